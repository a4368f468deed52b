package hcl

// fileRoot is the top-level shape of a harness file. Both blocks are
// optional; unknown blocks and attributes are rejected.
type fileRoot struct {
	Build    *buildBlock    `hcl:"build,block"`
	Generate *generateBlock `hcl:"generate,block"`
}

// Pointer fields distinguish "not set" from a zero value so the file only
// overrides what it mentions.
type buildBlock struct {
	Compiler  *string   `hcl:"compiler,optional"`
	Flags     *[]string `hcl:"flags,optional"`
	Source    *string   `hcl:"source,optional"`
	Libraries *[]string `hcl:"libraries,optional"`
	Output    *string   `hcl:"output,optional"`
	Timeout   *string   `hcl:"timeout,optional"`
}

type generateBlock struct {
	InputSuffix  *string `hcl:"input_suffix,optional"`
	OutputSuffix *string `hcl:"output_suffix,optional"`
	Timeout      *string `hcl:"timeout,optional"`
	Workers      *int    `hcl:"workers,optional"`
}
