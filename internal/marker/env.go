package marker

import "runtime"

// Env maps environment variable names to their string values. A variable
// absent from the Env is unset; comparisons against unset variables
// evaluate false (see Eval).
type Env map[string]string

// KnownVars lists the marker variables this package understands. Unknown
// variables are not an error - Validate reports them as warnings so a
// manifest written for a newer consumer still parses.
var KnownVars = []string{
	"python_version",
	"python_full_version",
	"implementation_name",
	"implementation_version",
	"os_name",
	"sys_platform",
	"platform_machine",
	"platform_system",
	"platform_python_implementation",
}

// versionVars compare under the version grammar rather than lexically.
var versionVars = map[string]bool{
	"python_version":         true,
	"python_full_version":    true,
	"implementation_version": true,
}

// DefaultEnv describes the current platform. Interpreter-specific
// variables (python_version and friends) are unset: there is no
// interpreter here to describe, and leaving them unset makes conditional
// declarations evaluate false rather than guessing.
func DefaultEnv() Env {
	env := Env{
		"platform_machine": runtime.GOARCH,
	}
	switch runtime.GOOS {
	case "windows":
		env["os_name"] = "nt"
		env["sys_platform"] = "win32"
		env["platform_system"] = "Windows"
	case "darwin":
		env["os_name"] = "posix"
		env["sys_platform"] = "darwin"
		env["platform_system"] = "Darwin"
	default:
		env["os_name"] = "posix"
		env["sys_platform"] = runtime.GOOS
		env["platform_system"] = "Linux"
	}
	return env
}
