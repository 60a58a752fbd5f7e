// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// ParseSettings splits settings -- typically the contents of a flag set by the user -- into the list of
// "name=value" definitions it holds. The settings are separated by ";": e.g.: "seed=3;alpha_max=1.5".
//
// An entry like "file:settings.txt" reads the settings from the file, with new-lines working as ";" and lines
// starting with "#" taken as comments.
//
// Example usage:
//
//	defs, err := commandline.ParseSettings(*flagSet)
//	if err != nil { klog.Fatalf("%+v", err) }
//	vars, err := config.ParseVars(defs)
func ParseSettings(settings string) (definitions []string, err error) {
	for _, setting := range strings.Split(settings, ";") {
		definitions, err = parseSetting(setting, definitions)
		if err != nil {
			return nil, err
		}
	}
	return definitions, nil
}

func parseSetting(setting string, definitions []string) ([]string, error) {
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return definitions, nil
	}
	if filePath, isFile := strings.CutPrefix(setting, "file:"); isFile {
		if rest, found := strings.CutPrefix(filePath, "~/"); found {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.Wrapf(err, "failed to expand %q", filePath)
			}
			filePath = filepath.Join(home, rest)
		}
		contents, err := os.ReadFile(filePath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read settings from file %q", filePath)
		}
		for _, line := range strings.Split(string(contents), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			for _, lineSetting := range strings.Split(line, ";") {
				if definitions, err = parseSetting(lineSetting, definitions); err != nil {
					return nil, err
				}
			}
		}
		return definitions, nil
	}
	if name, _, found := strings.Cut(setting, "="); !found || strings.TrimSpace(name) == "" {
		return nil, errors.Errorf("can't parse setting %q: each setting requires the format \"<name>=<value>\"", setting)
	}
	return append(definitions, setting), nil
}

// SprintSettings pretty-prints the variables given to a pipeline file, sorted by name.
func SprintSettings(vars map[string]cty.Value) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("\t%q: (%s) %s", name, vars[name].Type().FriendlyName(), sprintValue(vars[name])))
	}
	return strings.Join(parts, "\n")
}

func sprintValue(v cty.Value) string {
	if !v.IsKnown() || v.IsNull() {
		return v.GoString()
	}
	switch v.Type() {
	case cty.String:
		return v.AsString()
	case cty.Number:
		return v.AsBigFloat().Text('g', -1)
	case cty.Bool:
		return fmt.Sprintf("%t", v.True())
	}
	return v.GoString()
}
