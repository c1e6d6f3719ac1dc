package main

import (
	"os"
	"strconv"
	"strings"
)

// envOr returns the value of key, or def when it is unset or empty.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// envBool reads key as a boolean. It accepts the strconv.ParseBool forms
// plus yes/no and on/off; anything else yields def.
func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
