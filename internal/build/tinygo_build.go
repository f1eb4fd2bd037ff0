// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/pflag"
)

// Builds a codegen plugin such as bin/tagwire-codegen-go into a wasm module
// with TinyGo. Remaining arguments are passed through to `tinygo build`.
var (
	tinygo   = pflag.String("tinygo", "tinygo", "path to the tinygo binary")
	output   = pflag.StringP("output", "o", "", "output wasm module")
	chdir    = pflag.String("chdir", ".", "directory to build from")
	goSdkBin = pflag.String("go-sdk-bin", "", "directory containing the go binary")
	wasmOpt  = pflag.String("wasm-opt", "", "path to wasm-opt")
	target   = pflag.String("target", "wasm-unknown", "tinygo target")
)

func main() {
	pflag.Parse()
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Missing required flag --output")
		os.Exit(2)
	}
	pwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	tinygoArgs := []string{"build", "-target=" + *target}
	tinygoArgs = append(tinygoArgs, "-o="+absPath(pwd, *output))
	tinygoArgs = append(tinygoArgs, pflag.Args()...)

	cmd := exec.Command(lookTool(pwd, *tinygo), tinygoArgs...)
	cmd.Env = os.Environ()
	if *goSdkBin != "" {
		cmd.Env = append(cmd.Env, "PATH="+absPath(pwd, *goSdkBin))
	}
	if *wasmOpt != "" {
		cmd.Env = append(cmd.Env, "WASMOPT="+absPath(pwd, *wasmOpt))
	}
	cmd.Env = append(cmd.Env, "HOME="+filepath.Join(os.TempDir(), "tinygo-home"))
	cmd.Dir = absPath(pwd, *chdir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func absPath(pwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(pwd, path)
}

// Bare names are resolved through $PATH.
func lookTool(pwd, name string) string {
	if filepath.Base(name) == name {
		if found, err := exec.LookPath(name); err == nil {
			return found
		}
	}
	return absPath(pwd, name)
}
