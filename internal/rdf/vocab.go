package rdf

// Vocabulary IRIs for the Web Access Control ontology and friends.
const (
	aclNS  = "http://www.w3.org/ns/auth/acl#"
	foafNS = "http://xmlns.com/foaf/0.1/"

	RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	ACLAuthorization = aclNS + "Authorization"

	// Scope links.
	ACLAccessTo      = aclNS + "accessTo"
	ACLDefault       = aclNS + "default"
	ACLDefaultForNew = aclNS + "defaultForNew" // legacy spelling of acl:default

	// Grantee links.
	ACLAgent      = aclNS + "agent"
	ACLAgentGroup = aclNS + "agentGroup"
	ACLAgentClass = aclNS + "agentClass"
	ACLOrigin     = aclNS + "origin"

	// Access modes.
	ACLMode     = aclNS + "mode"
	ModeRead    = aclNS + "Read"
	ModeAppend  = aclNS + "Append"
	ModeWrite   = aclNS + "Write"
	ModeControl = aclNS + "Control"

	// Agent classes.
	FOAFAgent             = foafNS + "Agent" // everyone
	ACLAuthenticatedAgent = aclNS + "AuthenticatedAgent"
)
