package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of every recognized environment variable.
const EnvPrefix = "TEXTSCREEN_"

// EnvLoader applies environment variable overrides.
//
// Recognized variables, after the prefix:
//
//	WIDTH, HEIGHT    display.width, display.height
//	MOUSE_FLIP       display.mouse_flip (true/false, yes/no, on/off, 1/0)
//	LOG_LEVEL        log.level
//	LOG_FILE         log.file
//	BACKENDS         backends, comma separated
//	ANSI_OUTPUT      ansi.output
type EnvLoader struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvLoader creates a loader reading variables that start with prefix.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, lookup: os.LookupEnv}
}

// Apply overrides cfg with every variable that is set.
func (l *EnvLoader) Apply(cfg *Config) error {
	var err error
	l.intVar("WIDTH", &cfg.Display.Width, &err)
	l.intVar("HEIGHT", &cfg.Display.Height, &err)
	l.boolVar("MOUSE_FLIP", &cfg.Display.MouseFlip, &err)
	l.stringVar("LOG_LEVEL", &cfg.Log.Level, true)
	l.stringVar("LOG_FILE", &cfg.Log.File, false)
	l.stringVar("ANSI_OUTPUT", &cfg.ANSI.Output, false)

	if v, ok := l.lookup(l.prefix + "BACKENDS"); ok {
		cfg.Backends = splitList(v)
	}
	return err
}

func (l *EnvLoader) stringVar(name string, dst *string, lower bool) {
	v, ok := l.lookup(l.prefix + name)
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if lower {
		v = strings.ToLower(v)
	}
	*dst = v
}

func (l *EnvLoader) intVar(name string, dst *int, errp *error) {
	v, ok := l.lookup(l.prefix + name)
	if !ok || *errp != nil {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errp = &ParseError{Path: "env:" + l.prefix + name, Message: fmt.Sprintf("not an integer: %q", v), Err: err}
		return
	}
	*dst = n
}

func (l *EnvLoader) boolVar(name string, dst *bool, errp *error) {
	v, ok := l.lookup(l.prefix + name)
	if !ok || *errp != nil {
		return
	}
	b, ok := parseBool(v)
	if !ok {
		*errp = &ParseError{Path: "env:" + l.prefix + name, Message: fmt.Sprintf("not a boolean: %q", v)}
		return
	}
	*dst = b
}

func parseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
