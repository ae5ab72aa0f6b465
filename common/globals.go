package common

// ToolName is the name of the lowering backend executable.
const ToolName string = "irbackend"

// ToolVersion is the current backend version as a semantic version string.
const ToolVersion string = "v0.3.0"

// ProfileFileName is the default name of a build profile file.
const ProfileFileName string = "irbackend.toml"

// ProgramFileExt is the file extension of a TOML program description.
const ProgramFileExt string = ".ir.toml"
