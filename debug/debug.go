package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Match  bool
	Checks bool
	Format bool
	Sync   bool
	Merge  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Match = boolEnv("RIGRA_DEBUG_MATCH")
	d.Checks = boolEnv("RIGRA_DEBUG_CHECKS")
	d.Format = boolEnv("RIGRA_DEBUG_FORMAT")
	d.Sync = boolEnv("RIGRA_DEBUG_SYNC")
	d.Merge = boolEnv("RIGRA_DEBUG_MERGE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Match() bool {
	return d.Match
}
func Checks() bool {
	return d.Checks
}
func Format() bool {
	return d.Format
}
func Sync() bool {
	return d.Sync
}
func Merge() bool {
	return d.Merge
}

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
