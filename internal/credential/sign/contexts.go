package sign

// Embedded copies of the context documents referenced by issued
// credentials, keyed by URL in the loader above.

const credentialsV1Context = `{
  "@context": {
    "@version": 1.1,
    "id": "@id",
    "type": "@type",
    "cred": "https://www.w3.org/2018/credentials#",
    "sec": "https://w3id.org/security#",
    "xsd": "http://www.w3.org/2001/XMLSchema#",
    "VerifiableCredential": {"@id": "cred:VerifiableCredential"},
    "issuer": {"@id": "cred:issuer", "@type": "@id"},
    "issuanceDate": {"@id": "cred:issuanceDate", "@type": "xsd:dateTime"},
    "credentialSubject": {"@id": "cred:credentialSubject", "@type": "@id"},
    "proof": {"@id": "sec:proof", "@type": "@id", "@container": "@graph"}
  }
}`

const pipV1Context = `{
  "@context": {
    "@version": 1.1,
    "pip": "https://w3id.org/pip#",
    "PIPBenefitCredential": {"@id": "pip:PIPBenefitCredential"},
    "benefitType": {"@id": "pip:benefitType"},
    "amount": {"@id": "pip:amount"},
    "name": {"@id": "pip:name"},
    "components": {"@id": "pip:component", "@container": "@list"},
    "totals": {"@id": "pip:totals", "@container": "@index"}
  }
}`
