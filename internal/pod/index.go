package pod

import (
	"fmt"
	"strings"
)

const (
	ldpContains = "http://www.w3.org/ns/ldp#contains"

	// CredentialsContainer is the pod-relative container credentials live in.
	CredentialsContainer = "credentials/"

	// IndexResource is the discoverable listing inside the container.
	IndexResource = "index.ttl"
)

// baseIndexDocument is written when the container has no index yet.
func baseIndexDocument(container string) string {
	return fmt.Sprintf(`@prefix ldp: <http://www.w3.org/ns/ldp#> .
@prefix dc: <http://purl.org/dc/terms/> .

<%s> a ldp:Container ;
    dc:title "Verifiable Credentials Container" .
`, container)
}

// AppendIndexEntry returns the index document with containment statements
// for the two newly stored artifacts appended. The appended statement uses
// full predicate IRIs so it stays valid regardless of which prefixes the
// existing document declares.
func AppendIndexEntry(existing []byte, container, jsonldResource, turtleResource string) string {
	doc := strings.TrimRight(string(existing), "\n")
	if doc == "" {
		doc = strings.TrimRight(baseIndexDocument(container), "\n")
	}

	return fmt.Sprintf("%s\n\n<%s> <%s> <%s>, <%s> .\n",
		doc, container, ldpContains, jsonldResource, turtleResource)
}
