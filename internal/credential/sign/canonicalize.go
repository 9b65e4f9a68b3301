package sign

import (
	"strings"

	"github.com/piprate/json-gold/ld"

	dErrors "pipvc/pkg/domain-errors"
)

const (
	canonicalizationAlgorithm = "URDNA2015"
	nquadsFormat              = "application/n-quads"
)

// Canonicalize normalizes a linked-data document to canonical N-Quads.
// Signing and verification both run the proof-less document through this,
// so nondeterministic signature bytes still verify against stable content.
func Canonicalize(doc map[string]interface{}) ([]byte, error) {
	options := ld.NewJsonLdOptions("")
	options.ProcessingMode = ld.JsonLd_1_1
	options.Algorithm = canonicalizationAlgorithm
	options.Format = nquadsFormat
	options.ProduceGeneralizedRdf = true
	options.DocumentLoader = newEmbeddedLoader()

	view, err := ld.NewJsonLdProcessor().Normalize(doc, options)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to normalize credential document")
	}

	result, ok := view.(string)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "unexpected normalized document view")
	}
	return []byte(result), nil
}

// embeddedLoader resolves the context URLs this issuer declares from
// embedded documents. Canonicalization must not depend on the network: a
// context server outage may not block or alter signing.
type embeddedLoader struct {
	docs map[string]string
}

func newEmbeddedLoader() *embeddedLoader {
	return &embeddedLoader{docs: map[string]string{
		"https://www.w3.org/2018/credentials/v1": credentialsV1Context,
		"https://w3id.org/pip/v1":                pipV1Context,
	}}
}

// LoadDocument implements ld.DocumentLoader over the embedded contexts.
func (l *embeddedLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	doc, ok := l.docs[u]
	if !ok {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, "context "+u+" is not embedded")
	}
	parsed, err := ld.DocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, err
	}
	return &ld.RemoteDocument{DocumentURL: u, Document: parsed}, nil
}
