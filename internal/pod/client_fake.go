package pod

import (
	"context"
	"sync"

	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

// FakeClient is an in-memory pod for tests, mirroring the mock personal
// data store the service is tested against end to end. Individual
// operations can be made to fail per resource.
type FakeClient struct {
	mu sync.Mutex

	// Root is returned by ResolveRoot unless ResolveErr is set.
	Root       string
	ResolveErr error

	objects map[string]fakeObject
	putErrs map[string]error
	getErrs map[string]error
}

type fakeObject struct {
	content   []byte
	mediaType string
}

// NewFakeClient creates a fake pod rooted at the given URL.
func NewFakeClient(root string) *FakeClient {
	return &FakeClient{
		Root:    root,
		objects: make(map[string]fakeObject),
		putErrs: make(map[string]error),
		getErrs: make(map[string]error),
	}
}

// FailPut makes the next and all further Puts to resource fail with err.
func (f *FakeClient) FailPut(resource string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putErrs[resource] = err
}

// FailGet makes Gets of resource fail with err.
func (f *FakeClient) FailGet(resource string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErrs[resource] = err
}

// Stored returns the stored content and whether the resource exists.
func (f *FakeClient) Stored(resource string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[resource]
	return obj.content, ok
}

// MediaType returns the stored media type for a resource.
func (f *FakeClient) MediaType(resource string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[resource].mediaType
}

func (f *FakeClient) ResolveRoot(_ context.Context, _ id.SubjectID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ResolveErr != nil {
		return "", f.ResolveErr
	}
	return f.Root, nil
}

func (f *FakeClient) Put(_ context.Context, resource string, content []byte, mediaType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.putErrs[resource]; err != nil {
		return err
	}
	f.objects[resource] = fakeObject{content: append([]byte(nil), content...), mediaType: mediaType}
	return nil
}

func (f *FakeClient) Get(_ context.Context, resource string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErrs[resource]; err != nil {
		return nil, "", err
	}
	obj, ok := f.objects[resource]
	if !ok {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "resource not found: "+resource)
	}
	return obj.content, obj.mediaType, nil
}

func (f *FakeClient) Delete(_ context.Context, resource string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[resource]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "resource not found: "+resource)
	}
	delete(f.objects, resource)
	return nil
}

var _ Client = (*FakeClient)(nil)
