package core

import (
	"path/filepath"
	"reflect"
	"strings"
)

// Variadic marks a flag consuming every following token up to the next
// option.
const Variadic = -1

// Aliases maps legacy launcher names (symlinks to the binary) to
// subcommands.
var Aliases = map[string]string{
	"GMX_launcher":    "gmx",
	"GMX_replicater":  "replica",
	"G16_launcher":    "gaussian",
	"ORCA_launcher":   "orca",
	"VASP_launcher":   "vasp",
	"SCRIPT_launcher": "script",
}

// FlagSpec is one row of a launcher's flag table.
type FlagSpec struct {
	Short string
	Long  string
	Arity int
	Field string
}

// FlagTable derives the flag table from a go-flags command struct: names
// come from the short/long tags, bool fields take no value, slices tagged
// arity:"*" take a run of values, everything else takes one value.
// Embedded group structs are walked.
func FlagTable(data interface{}) []FlagSpec {
	t := reflect.TypeOf(data)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var table []FlagSpec
	collectFlags(t, &table)
	return table
}

func collectFlags(t reflect.Type, table *[]FlagSpec) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() == reflect.Struct {
			if _, ok := field.Tag.Lookup("group"); ok || field.Anonymous {
				collectFlags(field.Type, table)
			}
			continue
		}
		short, long := field.Tag.Get("short"), field.Tag.Get("long")
		if len(short) == 0 && len(long) == 0 {
			continue
		}
		spec := FlagSpec{Short: short, Long: long, Arity: 1, Field: field.Name}
		switch {
		case field.Type.Kind() == reflect.Bool:
			spec.Arity = 0
		case field.Type.Kind() == reflect.Slice && field.Tag.Get("arity") == "*":
			spec.Arity = Variadic
		}
		*table = append(*table, spec)
	}
}

func lookupFlag(table []FlagSpec, name string, long bool) (FlagSpec, bool) {
	for _, spec := range table {
		if long && spec.Long == name || !long && spec.Short == name {
			return spec, true
		}
	}
	return FlagSpec{}, false
}

// passthrough reports whether the command hands its positional tokens to
// another program, tagged passthrough:"true" on the positional-args field.
func passthrough(data interface{}) bool {
	t := reflect.TypeOf(data)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag
		if _, ok := tag.Lookup("positional-args"); ok && tag.Get("passthrough") == "true" {
			return true
		}
	}
	return false
}

func isOption(token string) bool {
	return len(token) > 1 && token[0] == '-'
}

// PreprocessArgs turns argv into arguments for the go-flags parser. A
// legacy launcher name in argv[0] selects its subcommand. Leading option
// tokens are scanned against the command's flag table, variadic runs are
// expanded into repeated options, and "--" is inserted where option
// scanning stops so every later token is positional. An option missing
// from the table fails the whole invocation. A help flag among the
// positional tokens reduces the invocation to a help request, unless the
// command passes its positionals through.
func PreprocessArgs(argv []string, commands map[string]interface{}) ([]string, error) {
	prog := filepath.Base(argv[0])
	args := append([]string{}, argv[1:]...)
	if cmd, ok := Aliases[prog]; ok {
		args = append([]string{cmd}, args...)
	}
	if len(args) == 0 {
		return nil, &NoArgumentsError{Command: prog}
	}
	data, ok := commands[args[0]]
	if !ok {
		return args, nil
	}
	table := FlagTable(data)

	out := []string{args[0]}
	i := 1
	dashdash := false
	for i < len(args) {
		token := args[i]
		if token == "--" {
			i++
			dashdash = true
			break
		}
		if !isOption(token) {
			break
		}
		var spec FlagSpec
		var known, inline bool
		if strings.HasPrefix(token, "--") {
			name := token[2:]
			if eq := strings.Index(name, "="); eq >= 0 {
				name, inline = name[:eq], true
			}
			spec, known = lookupFlag(table, name, true)
		} else {
			// in a cluster every flag but the last takes no value
			j := 1
			for ; j < len(token)-1; j++ {
				spec, known = lookupFlag(table, token[j:j+1], false)
				if !known {
					return nil, &UnknownOptionError{Option: "-" + token[j:j+1]}
				}
				if spec.Arity != 0 {
					break
				}
				out = append(out, "-"+token[j:j+1])
			}
			spec, known = lookupFlag(table, token[j:j+1], false)
			inline = j+1 < len(token)
			token = "-" + token[j:]
		}
		if !known {
			return nil, &UnknownOptionError{Option: token}
		}
		switch {
		case inline, spec.Arity == 0:
			out = append(out, token)
			i++
		case spec.Arity == Variadic:
			i++
			n := 0
			for i < len(args) && !isOption(args[i]) {
				out = append(out, token, args[i])
				i++
				n++
			}
			if n == 0 {
				out = append(out, token)
			}
		default:
			out = append(out, token)
			if i+1 < len(args) {
				out = append(out, args[i+1])
			}
			i += 2
		}
	}
	if help, ok := lookupFlag(table, "help", true); ok && !dashdash && !passthrough(data) {
		for _, token := range args[i:] {
			if token == "-h" || token == "--help" {
				return []string{args[0], "--" + help.Long}, nil
			}
		}
	}
	out = append(out, "--")
	if i < len(args) {
		out = append(out, args[i:]...)
	}
	return out, nil
}
