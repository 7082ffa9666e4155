package schema

// Reserved environment parameter names. Their values come from the execution
// environment, so generated requests carry a {{Name}} placeholder instead of
// a literal, and the runner resolves the token at dispatch.
var reservedEnvParams = map[string]struct{}{
	"Region":     {},
	"Zone":       {},
	"ProjectId":  {},
	"PublicKey":  {},
	"PrivateKey": {},
}

// ActionParam is the parameter carrying the operation name on action-style
// POST APIs. It identifies the operation being called and is never corrupted
// by negative tests.
const ActionParam = "Action"

// IsReservedEnv reports whether name is a reserved environment parameter.
func IsReservedEnv(name string) bool {
	_, ok := reservedEnvParams[name]
	return ok
}

// ReservedEnvNames returns the reserved parameter names in a stable order.
func ReservedEnvNames() []string {
	return []string{"Region", "Zone", "ProjectId", "PublicKey", "PrivateKey"}
}

// Placeholder renders the environment placeholder token for a name,
// e.g. "Region" -> "{{Region}}".
func Placeholder(name string) string {
	return "{{" + name + "}}"
}

// RandomUUIDPlaceholder is resolved to a fresh UUID at dispatch time, once
// per test case so repeated sends of the same case share the value.
const RandomUUIDPlaceholder = "{{$randomUUID}}"
