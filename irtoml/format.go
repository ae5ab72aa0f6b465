// Package irtoml decodes textual module descriptions into IR module
// fragments.  A description is a TOML document listing the files of a
// module, their declarations and simple function bodies:
//
//	module = "demo"
//
//	[[files]]
//	name = "src/main.kt"
//	package = "demo"
//
//	[[files.classes]]
//	name = "Color"
//	kind = "enum"
//	entries = ["RED", "GREEN"]
//
//	[[files.functions]]
//	name = "main"
//	body = [
//	    { var = "c", init = { enum = "Color.RED" } },
//	    { call = "println", args = [{ template = [{ string = "c=" }, { get = "c" }] }] },
//	]
//
// Types are written as `Int`, `String?`, `Array<Int>`, or as the path of a
// class of the module such as `Outer.Inner` or `demo.Outer.Inner`.
package irtoml

// tomlModule is a module as it is encoded in TOML.
type tomlModule struct {
	Name  string     `toml:"module"`
	Files []tomlFile `toml:"files"`
}

type tomlFile struct {
	Name       string         `toml:"name"`
	Package    string         `toml:"package"`
	Facade     string         `toml:"facade"`
	Multifile  bool           `toml:"multifile"`
	Classes    []tomlClass    `toml:"classes"`
	Functions  []tomlFunction `toml:"functions"`
	Properties []tomlProperty `toml:"properties"`
	TypeAlias  []tomlAlias    `toml:"typealiases"`
}

type tomlClass struct {
	Name       string   `toml:"name"`
	Kind       string   `toml:"kind"`
	Visibility string   `toml:"visibility"`
	Modality   string   `toml:"modality"`
	Flags      []string `toml:"flags"`
	Supertypes []string `toml:"supertypes"`
	Underlying string   `toml:"underlying"`
	Entries    []string `toml:"entries"`

	Constructors []tomlConstructor `toml:"constructors"`
	Properties   []tomlProperty    `toml:"properties"`
	Functions    []tomlFunction    `toml:"functions"`
	Initializers []tomlInitializer `toml:"init"`
	Classes      []tomlClass       `toml:"classes"`
}

type tomlParam struct {
	Name    string      `toml:"name"`
	Type    string      `toml:"type"`
	Default interface{} `toml:"default"`
}

type tomlConstructor struct {
	Primary    bool        `toml:"primary"`
	Visibility string      `toml:"visibility"`
	Params     []tomlParam `toml:"params"`
	Body       interface{} `toml:"body"`
}

type tomlFunction struct {
	Name       string      `toml:"name"`
	Returns    string      `toml:"returns"`
	Visibility string      `toml:"visibility"`
	Modality   string      `toml:"modality"`
	Flags      []string    `toml:"flags"`
	Extension  string      `toml:"extension"`
	Params     []tomlParam `toml:"params"`
	Body       interface{} `toml:"body"`
}

type tomlProperty struct {
	Name       string      `toml:"name"`
	Type       string      `toml:"type"`
	Visibility string      `toml:"visibility"`
	Modality   string      `toml:"modality"`
	Flags      []string    `toml:"flags"`
	Init       interface{} `toml:"init"`
}

type tomlInitializer struct {
	Static bool        `toml:"static"`
	Body   interface{} `toml:"body"`
}

type tomlAlias struct {
	Name       string `toml:"name"`
	Visibility string `toml:"visibility"`
	Type       string `toml:"type"`
}
