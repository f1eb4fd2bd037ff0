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
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/pflag"
	wasm "github.com/tetratelabs/wazero"

	"go.tagwire.dev/tagwire/codegen/golang"
	"go.tagwire.dev/tagwire/encoding/ircbor"
)

const pluginPathEnv = "TAGWIRE_CODEGEN_PLUGIN_PATH"

type cmdCodegen struct {
	g *globals

	outDir     string
	plugin     string
	pluginPath string
	goPackage  string
	dialect    string
	stdout     bool
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen SCHEMA",
		summary: "Generate code for a schema",
		minArgs: 1,
		maxArgs: 1,
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outDir, "output", "o", "", "output directory")
	flags.StringVar(&cmd.plugin, "plugin", "", "target language (default go)")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", "colon-separated directories searched for WASM plugins (default $"+pluginPathEnv+")")
	flags.StringVar(&cmd.goPackage, "package", "", "name of the generated package")
	flags.StringVar(&cmd.dialect, "dialect", "", "schema dialect: proto or cbor (default from the file extension)")
	flags.BoolVar(&cmd.stdout, "stdout", false, "print generated files instead of writing them")
}

// settle fills unset flags from the configuration file.
func (cmd *cmdCodegen) settle() {
	cfg := cmd.g.cfg.Codegen
	if cmd.outDir == "" {
		cmd.outDir = cfg.Output
	}
	if cmd.plugin == "" {
		cmd.plugin = cfg.Plugin
	}
	if cmd.pluginPath == "" {
		cmd.pluginPath = cfg.PluginPath
	}
	if cmd.pluginPath == "" {
		cmd.pluginPath = os.Getenv(pluginPathEnv)
	}
	if cmd.goPackage == "" {
		cmd.goPackage = cfg.Package
	}
}

func (cmd *cmdCodegen) run(ctx context.Context, argv []string) int {
	g := cmd.g
	cmd.settle()

	if cmd.outDir == "" && !cmd.stdout {
		fmt.Fprintln(g.stderr, "No output directory specified (set --output= or --stdout)")
		return 1
	}

	schema := g.loadSchema(argv[0], cmd.dialect)
	if schema == nil {
		return 1
	}

	request, err := ircbor.NewCodegenRequest(schema, cmd.goPackage)
	if err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}

	var response *ircbor.CodegenResponse
	if cmd.plugin == "go" && cmd.pluginPath == "" {
		response = golang.HandleRequest(request)
	} else {
		response, err = cmd.runPlugin(ctx, request)
		if err != nil {
			fmt.Fprintln(g.stderr, err)
			return 1
		}
	}

	if response.Error != "" {
		fmt.Fprintln(g.stderr, strings.TrimRight(response.Error, "\n"))
		return 1
	}
	if len(response.OutputFiles) == 0 {
		fmt.Fprintln(g.stderr, "Plugin did not generate any output files")
		return 1
	}

	if cmd.stdout {
		return cmd.print(response.OutputFiles)
	}

	if err := os.MkdirAll(cmd.outDir, 0o755); err != nil {
		fmt.Fprintln(g.stderr, err)
		return 1
	}
	for _, outputFile := range response.OutputFiles {
		outPath, err := joinOutputPath(cmd.outDir, outputFile.Path)
		if err != nil {
			fmt.Fprintln(g.stderr, err)
			return 1
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			fmt.Fprintln(g.stderr, err)
			return 1
		}
		if err := os.WriteFile(outPath, outputFile.Content, 0o644); err != nil {
			fmt.Fprintln(g.stderr, err)
			return 1
		}
		g.log.Info("wrote generated file",
			slog.String("path", outPath),
			slog.Int("bytes", len(outputFile.Content)),
		)
	}
	return 0
}

func (cmd *cmdCodegen) print(files []*ircbor.OutputFile) int {
	g := cmd.g
	highlight := g.useColor(g.stdout)
	for _, file := range files {
		fmt.Fprintf(g.stdout, "// === %s ===\n", strings.Join(file.Path, "/"))
		if highlight && strings.HasSuffix(file.Path[len(file.Path)-1], ".go") {
			err := quick.Highlight(g.stdout, string(file.Content), "go", "terminal256", "monokai")
			if err == nil {
				continue
			}
			g.log.Debug("highlighting failed", slog.Any("error", err))
		}
		if _, err := g.stdout.Write(file.Content); err != nil {
			fmt.Fprintln(g.stderr, err)
			return 1
		}
	}
	return 0
}

// runPlugin passes the request to a WASM plugin. The plugin exports an
// allocator and a generate function per language; messages cross the
// boundary as a little-endian uint32 length followed by the CBOR payload.
func (cmd *cmdCodegen) runPlugin(ctx context.Context, request *ircbor.CodegenRequest) (*ircbor.CodegenResponse, error) {
	requestBuf, err := ircbor.MarshalRequest(request)
	if err != nil {
		return nil, err
	}
	frame := binary.LittleEndian.AppendUint32(nil, uint32(len(requestBuf)))
	frame = append(frame, requestBuf...)

	pluginPath, err := cmd.locatePlugin(cmd.plugin)
	if err != nil {
		return nil, err
	}

	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(16384)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	cmd.g.log.Debug("running codegen plugin", slog.String("path", pluginPath))
	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		return nil, err
	}
	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, err
	}

	moduleConfig := wasm.NewModuleConfig()
	plugin, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, err
	}
	mem := plugin.Memory()

	wasmAlloc := plugin.ExportedFunction("tagwire_codegen_allocate")
	wasmGenerate := plugin.ExportedFunction("tagwire_codegen_generate/" + cmd.plugin)
	if wasmAlloc == nil || wasmGenerate == nil {
		return nil, fmt.Errorf("Plugin %s does not export the tagwire codegen ABI for %q", pluginPath, cmd.plugin)
	}

	results, err := wasmAlloc.Call(ctx, uint64(len(frame)))
	if err != nil {
		return nil, err
	}
	requestPtr := uint32(results[0])
	if !mem.Write(requestPtr, frame) {
		return nil, fmt.Errorf("Failed to write request message")
	}

	results, err = wasmAlloc.Call(ctx, 4)
	if err != nil {
		return nil, err
	}
	responsePtrPtr := uint32(results[0])

	results, err = wasmGenerate.Call(ctx, uint64(requestPtr), uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message pointer")
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr+4, responseLen)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message")
	}

	response, err := ircbor.UnmarshalResponse(responseBuf)
	if err != nil {
		return nil, err
	}
	if rc != 0 && response.Error == "" {
		response.Error = fmt.Sprintf("Plugin %s failed with status %d", pluginPath, rc)
	}
	return response, nil
}

func (cmd *cmdCodegen) locatePlugin(language string) (string, error) {
	if cmd.pluginPath == "" {
		return "", fmt.Errorf("No plugin path set, use --plugin-path= or $%s", pluginPathEnv)
	}
	basename := fmt.Sprintf("tagwire-codegen-%s.wasm", language)
	for _, dir := range filepath.SplitList(cmd.pluginPath) {
		pluginPath := filepath.Join(dir, basename)
		if _, err := os.Stat(pluginPath); err == nil {
			return pluginPath, nil
		}
	}
	return "", fmt.Errorf("Codegen plugin %s not found in plugin path", basename)
}
