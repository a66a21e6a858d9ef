// Command ndshow is a thin CLI exercising dynarray's public surface:
// build an array from a builtin type name and text values, optionally
// cast it, and print the result. Type names are looked up with
// dynarray.ParseBuiltinName, value text is assigned into the array from a
// string array with Array.ValAssign, and rollsum's window argument is read
// with fmt.Sscanf.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"dynarray"
)

const version = "1.0.0"

var commandAliases = map[string]string{
	"s": "scalar",
	"a": "array",
	"c": "cast",
	"r": "rollsum",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("ndshow " + version)
	case "scalar":
		if err := scalarCommand(args[1:]); err != nil {
			log.Fatalf("ndshow: %v", err)
		}
	case "array":
		if err := arrayCommand(args[1:]); err != nil {
			log.Fatalf("ndshow: %v", err)
		}
	case "cast":
		if err := castCommand(args[1:]); err != nil {
			log.Fatalf("ndshow: %v", err)
		}
	case "rollsum":
		if err := rollsumCommand(args[1:]); err != nil {
			log.Fatalf("ndshow: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "ndshow: unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`ndshow - build and print dynarray arrays from the command line

Usage:
  ndshow scalar <type> <value>            build a rank-0 array and print it
  ndshow array  <type> <v1,v2,...>        build a rank-1 array and print it
  ndshow cast   <type> <value> <target>   build a scalar, ucast, eval, print
  ndshow rollsum <v1,v2,...> <window>     rolling-sum a float64 array
  ndshow version
  ndshow help`)
}

// parseInto builds a rank-0 array of the named builtin type by routing text
// through a string array and dynarray's own value-assignment conversion,
// the same path any type-of-type or categorical text assignment takes.
func parseInto(typeName, text string) (*dynarray.Array, error) {
	dt, err := dynarray.ParseBuiltinName(typeName)
	if err != nil {
		return nil, fmt.Errorf("unknown type %q: %w", typeName, err)
	}
	dst := dynarray.Empty(nil, dt)
	src, err := dynarray.FromString(text)
	if err != nil {
		return nil, err
	}
	if err := dst.ValAssign(src, dynarray.ErrorModeOverflow); err != nil {
		return nil, err
	}
	return dst, nil
}

func scalarCommand(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ndshow scalar <type> <value>")
	}
	a, err := parseInto(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(a.String())
	return nil
}

func arrayCommand(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ndshow array <type> <v1,v2,...>")
	}
	dt, err := dynarray.ParseBuiltinName(args[0])
	if err != nil {
		return fmt.Errorf("unknown type %q: %w", args[0], err)
	}
	texts := strings.Split(args[1], ",")
	elems, err := dynarray.FromStrings(texts)
	if err != nil {
		return err
	}
	dst := dynarray.Empty([]int64{int64(len(texts))}, dt)
	if err := dst.ValAssign(elems, dynarray.ErrorModeOverflow); err != nil {
		return err
	}
	fmt.Println(dst.String())
	return nil
}

func castCommand(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: ndshow cast <type> <value> <target>")
	}
	a, err := parseInto(args[0], args[1])
	if err != nil {
		return err
	}
	target, err := dynarray.ParseBuiltinName(args[2])
	if err != nil {
		return fmt.Errorf("unknown target type %q: %w", args[2], err)
	}
	casted, err := a.Ucast(target)
	if err != nil {
		return err
	}
	ev, err := casted.Eval()
	if err != nil {
		return err
	}
	fmt.Println(ev.String())
	return nil
}

func rollsumCommand(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: ndshow rollsum <v1,v2,...> <window>")
	}
	texts := strings.Split(args[0], ",")
	values := make([]float64, len(texts))
	for i, t := range texts {
		a, err := parseInto("float64", strings.TrimSpace(t))
		if err != nil {
			return err
		}
		v, err := dynarray.As[float64](a)
		if err != nil {
			return err
		}
		values[i] = v
	}
	window := 0
	if _, err := fmt.Sscanf(args[1], "%d", &window); err != nil || window <= 0 {
		return fmt.Errorf("invalid window %q", args[1])
	}

	arr := dynarray.FromSlice(values)
	sum := dynarray.BuiltinSum1D()
	sum.WindowSentinelNaN = true
	rolling := dynarray.MakeRollingArrfunc(sum, window)
	result, err := rolling.Apply(arr)
	if err != nil {
		return err
	}
	fmt.Println(result.String())
	return nil
}
