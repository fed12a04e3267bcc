package snapshot

import (
	"os"
	"strings"
)

// Environment variables recognized by FromEnv.
const (
	envUpdate     = "SNAPSHOT_UPDATE"
	envRaw        = "SNAPSHOT_RAW"
	envSkipVerify = "SNAPSHOT_SKIP_VERIFY"
)

// FromEnv derives session options from the environment, so a test suite can
// switch a whole run into update or raw-recording mode without code changes:
//
//	SNAPSHOT_UPDATE=1      record instead of verify
//	SNAPSHOT_RAW=1         additionally persist the untransformed state
//	SNAPSHOT_SKIP_VERIFY=1 disable verification
//
// Values are parsed case-insensitively; "1", "true", "yes" and "on" enable a
// flag.
func FromEnv() SessionOption {
	return func(s *Session) {
		if envEnabled(envUpdate) {
			s.update = true
		}
		if envEnabled(envRaw) {
			s.raw = true
		}
		if envEnabled(envSkipVerify) {
			s.verify = false
		}
	}
}

func envEnabled(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
