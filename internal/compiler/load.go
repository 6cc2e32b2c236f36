package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadString compiles definitions from CUE source text.
func LoadString(src string) (*Definitions, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	return CompileBundles(v)
}

// LoadFile compiles definitions from a single .cue file.
// Error positions carry the file name.
func LoadFile(path string) (*Definitions, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(path))
	return CompileBundles(v)
}

// LoadDir compiles definitions from the CUE package in dir. All .cue files
// must declare the same package.
func LoadDir(dir string) (*Definitions, error) {
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileBundles(value)
}

// Load compiles definitions from path, which may be a .cue file or a
// directory holding a CUE package.
func Load(path string) (*Definitions, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("definitions not found: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	if filepath.Ext(path) != ".cue" {
		return nil, fmt.Errorf("definitions file must have a .cue extension: %s", path)
	}
	return LoadFile(path)
}
