// Command rvm runs and compiles RA programs, the CLI surface described by
// spec.md §6.1, mirroring the teacher's root-level binary wiring
// interp.New to parsed flags.
package main

import "os"

func main() {
	os.Exit(Execute())
}
