package models

// GeneratedClass is the emitted output of one class
type GeneratedClass struct {
	BinaryName  string // JVM internal name, e.g. p/Outer$1
	FilePath    string // relative output path, e.g. p/Outer$1.class
	SourceFile  string // name of the unit the class came from
	Disassembly string // javap-style rendering of the class file
}
