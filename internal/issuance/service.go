// Package issuance orchestrates the end-to-end credential pipeline:
// build, sign, persist both serializations into the subject's pod,
// refresh the container index, and write access-control documents.
//
// Steps run in a fixed order and are never retried internally. The two
// artifact writes are the only fatal persistence steps; index and grant
// failures degrade the result instead of failing the call.
package issuance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"pipvc/internal/credential/encode"
	"pipvc/internal/credential/models"
	"pipvc/internal/issuance/metrics"
	"pipvc/internal/issuance/tracer"
	"pipvc/internal/pod"
	id "pipvc/pkg/domain"
	dErrors "pipvc/pkg/domain-errors"
)

// Builder constructs unsigned credentials from validated claims.
type Builder interface {
	Build(subject id.SubjectID, claims models.BenefitClaims) (*models.Credential, error)
}

// Signer produces an integrity proof over a credential's content.
type Signer interface {
	Sign(ctx context.Context, c *models.Credential) (*models.Proof, error)
}

// Registry records issued credentials for later listing and revocation.
type Registry interface {
	Record(ctx context.Context, credential *models.Credential) error
}

// Option configures the issuance service.
type Option func(*Service)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics attaches Prometheus metrics. Without it the service
// records nothing.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer overrides the default no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithAuthenticatedRead additionally grants read access to any
// authenticated agent on issued artifacts.
func WithAuthenticatedRead(enabled bool) Option {
	return func(s *Service) { s.authenticatedRead = enabled }
}

// Service runs the issuance pipeline.
type Service struct {
	builder  Builder
	signer   Signer
	pods     pod.Client
	registry Registry

	thirdParty        id.AgentID
	authenticatedRead bool

	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// NewService creates the issuance service. thirdParty is the agent
// granted read access on every issued artifact; pass the zero value to
// grant no one.
func NewService(builder Builder, signer Signer, pods pod.Client, registry Registry, thirdParty id.AgentID, opts ...Option) *Service {
	s := &Service{
		builder:    builder,
		signer:     signer,
		pods:       pods,
		registry:   registry,
		thirdParty: thirdParty,
		logger:     slog.Default(),
		tracer:     tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueRequest carries the inputs of one issuance.
type IssueRequest struct {
	Subject id.SubjectID
	Claims  models.BenefitClaims

	// RootOverride skips WebID resolution and persists directly under
	// the given storage root. Used when the caller already knows the pod.
	RootOverride string
}

// Preview builds and returns an unsigned credential without touching the
// pod, the key store, or the registry. The returned credential's id is
// fresh per call and meaningless after the response.
func (s *Service) Preview(ctx context.Context, subject id.SubjectID, claims models.BenefitClaims) (*models.Credential, error) {
	_, span := s.tracer.Start(ctx, tracer.SpanPreview)
	credential, err := s.builder.Build(subject, claims)
	span.End(err)
	return credential, err
}

// Issue runs the full pipeline. On error the returned Result still
// reports the steps that completed; a nil error with Degraded set means
// both artifacts are durable but a side effect (index, grants, registry
// record) did not complete.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*models.Credential, *Result, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue)

	credential, result, err := s.issue(ctx, req)
	span.SetAttributes(tracer.Bool(tracer.AttrDegraded, result != nil && result.Degraded))
	span.End(err)

	s.metrics.ObserveIssueDuration(time.Since(started).Seconds())
	if err != nil {
		s.metrics.RecordFailed(errorCode(err))
	} else {
		s.metrics.RecordIssued()
	}
	return credential, result, err
}

func (s *Service) issue(ctx context.Context, req IssueRequest) (*models.Credential, *Result, error) {
	unsigned, err := s.builder.Build(req.Subject, req.Claims)
	if err != nil {
		return nil, newResult(""), err
	}

	proof, err := s.signer.Sign(ctx, unsigned)
	if err != nil {
		return nil, newResult(unsigned.ID), err
	}
	signed := unsigned.WithProof(*proof)
	credential := &signed

	result := newResult(credential.ID)
	span := func(name string) tracer.Span {
		_, sp := s.tracer.Start(ctx, name, tracer.String(tracer.AttrCredentialID, credential.ID.String()))
		return sp
	}

	// Step 1: locate the subject's storage root.
	root := req.RootOverride
	if root == "" {
		resolveSpan := span(tracer.SpanResolveRoot)
		root, err = s.pods.ResolveRoot(ctx, req.Subject)
		resolveSpan.End(err)
		if err != nil {
			result.mark(StepResolve, StepFailed)
			return credential, result, dErrors.Recode(err, dErrors.CodePodUnresolvable, "could not resolve pod storage root")
		}
		result.mark(StepResolve, StepSucceeded)
	} else {
		result.mark(StepResolve, StepSkipped)
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	result.Root = root

	container := root + pod.CredentialsContainer
	result.JSONLDResource = container + credential.ID.UUID() + ".jsonld"
	result.TurtleResource = container + credential.ID.UUID() + ".ttl"

	jsonldDoc, turtleDoc, err := encodeArtifacts(credential, result)
	if err != nil {
		return credential, result, err
	}

	// Step 2: write both serializations. Each write is independent so a
	// failure of one never rolls back the other.
	jsonldErr, turtleErr := s.writeArtifacts(ctx, jsonldDoc, turtleDoc, result)
	switch {
	case jsonldErr != nil && turtleErr != nil:
		return credential, result, dErrors.Recode(errors.Join(jsonldErr, turtleErr),
			dErrors.CodeInternal, "credential could not be stored in either format")
	case jsonldErr != nil:
		s.metrics.RecordPartialWrite("jsonld")
		return credential, result, dErrors.Recode(jsonldErr, dErrors.CodePartialWrite,
			"turtle artifact stored but json-ld artifact is missing")
	case turtleErr != nil:
		s.metrics.RecordPartialWrite("turtle")
		return credential, result, dErrors.Recode(turtleErr, dErrors.CodePartialWrite,
			"json-ld artifact stored but turtle artifact is missing")
	}

	if err := s.registry.Record(ctx, credential); err != nil {
		// The artifacts are durable; a registry gap is reconciled from
		// the pod, not by failing the issuance.
		result.Degraded = true
		s.metrics.RecordDegraded("registry")
		s.logger.ErrorContext(ctx, "credential issued but not recorded in registry",
			"credential_id", credential.ID,
			"error", err,
		)
	}

	// Step 3: refresh the container index. Non-fatal.
	s.updateIndex(ctx, container, result, span)

	// Step 4: write access-control documents. Non-fatal.
	s.writeGrants(ctx, req.Subject, result, span)

	return credential, result, nil
}

// encodeArtifacts derives both serializations before anything is written,
// so an encoding failure is reported as such and never as a partial write.
func encodeArtifacts(credential *models.Credential, result *Result) (jsonldDoc, turtleDoc []byte, err error) {
	jsonldDoc, err = encode.JSONLD(credential)
	if err != nil {
		result.mark(StepWriteJSONLD, StepFailed)
		result.mark(StepWriteTurtle, StepSkipped)
		return nil, nil, dErrors.Recode(err, dErrors.CodeInternal, "json-ld artifact could not be encoded")
	}
	turtle, err := encode.Turtle(credential)
	if err != nil {
		result.mark(StepWriteJSONLD, StepSkipped)
		result.mark(StepWriteTurtle, StepFailed)
		return nil, nil, dErrors.Recode(err, dErrors.CodeInternal, "turtle artifact could not be encoded")
	}
	return jsonldDoc, []byte(turtle), nil
}

// writeArtifacts stores both serializations in parallel and reports each
// outcome separately.
func (s *Service) writeArtifacts(ctx context.Context, jsonldDoc, turtleDoc []byte, result *Result) (jsonldErr, turtleErr error) {
	var group errgroup.Group
	group.Go(func() error {
		jsonldErr = s.writeFormat(ctx, "jsonld", result.JSONLDResource, jsonldDoc, encode.MediaTypeJSONLD)
		return nil
	})
	group.Go(func() error {
		turtleErr = s.writeFormat(ctx, "turtle", result.TurtleResource, turtleDoc, encode.MediaTypeTurtle)
		return nil
	})
	_ = group.Wait()

	markWrite(result, StepWriteJSONLD, jsonldErr)
	markWrite(result, StepWriteTurtle, turtleErr)
	return jsonldErr, turtleErr
}

func (s *Service) writeFormat(ctx context.Context, format, resource string, content []byte, mediaType string) error {
	started := time.Now()
	_, sp := s.tracer.Start(ctx, tracer.SpanWriteFormat, tracer.String(tracer.AttrFormat, format))
	err := s.pods.Put(ctx, resource, content, mediaType)
	sp.End(err)
	s.metrics.ObservePodWrite(format, time.Since(started).Seconds())
	return err
}

func markWrite(result *Result, step Step, err error) {
	if err != nil {
		result.mark(step, StepFailed)
	} else {
		result.mark(step, StepSucceeded)
	}
}

// updateIndex appends containment statements for the two artifacts to the
// container's index document, creating it if absent.
func (s *Service) updateIndex(ctx context.Context, container string, result *Result, span func(string) tracer.Span) {
	indexSpan := span(tracer.SpanUpdateIndex)
	indexResource := container + pod.IndexResource

	existing, _, err := s.pods.Get(ctx, indexResource)
	if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		indexSpan.End(err)
		result.mark(StepIndex, StepFailed)
		result.Degraded = true
		s.metrics.RecordDegraded("index")
		s.logger.WarnContext(ctx, "credential index could not be read",
			"resource", indexResource,
			"error", err,
		)
		return
	}

	doc := pod.AppendIndexEntry(existing, container, result.JSONLDResource, result.TurtleResource)
	err = s.pods.Put(ctx, indexResource, []byte(doc), encode.MediaTypeTurtle)
	indexSpan.End(err)
	if err != nil {
		result.mark(StepIndex, StepFailed)
		result.Degraded = true
		s.metrics.RecordDegraded("index")
		s.logger.WarnContext(ctx, "credential index could not be updated",
			"resource", indexResource,
			"error", err,
		)
		return
	}
	result.mark(StepIndex, StepSucceeded)
	result.IndexUpdated = true
}

// writeGrants stores a WAC document per artifact: full control for the
// subject, read for the configured third party, and optionally read for
// any authenticated agent.
func (s *Service) writeGrants(ctx context.Context, subject id.SubjectID, result *Result, span func(string) tracer.Span) {
	grantSpan := span(tracer.SpanWriteGrants)

	grants := []pod.Grant{pod.OwnerGrant(subject)}
	if s.thirdParty != "" {
		grants = append(grants, pod.ThirdPartyGrant(s.thirdParty))
	}
	if s.authenticatedRead {
		grants = append(grants, pod.AuthenticatedReadGrant())
	}

	var grantErr error
	for _, resource := range []string{result.JSONLDResource, result.TurtleResource} {
		doc := pod.ACLDocument(resource, grants)
		if err := s.pods.Put(ctx, pod.ACLResource(resource), []byte(doc), encode.MediaTypeTurtle); err != nil {
			grantErr = err
		}
	}
	grantSpan.End(grantErr)

	if grantErr != nil {
		result.mark(StepGrants, StepFailed)
		result.GrantError = fmt.Sprintf("%s: %v", dErrors.CodeGrantFailed, grantErr)
		result.Degraded = true
		s.metrics.RecordDegraded("grants")
		s.logger.WarnContext(ctx, "access grants could not be written",
			"credential_id", result.CredentialID,
			"error", grantErr,
		)
		return
	}
	result.mark(StepGrants, StepSucceeded)
	result.GrantsWritten = true
}

// errorCode extracts the domain code for metrics labels.
func errorCode(err error) string {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return string(domainErr.Code)
	}
	return string(dErrors.CodeInternal)
}
