package snow

import "github.com/wippyai/rsz"

var schemas = []*rsz.Schema{
	SymbolColorDataSchema,
	CustomBuildupResultSchema,
	EquipmentInventoryDataSchema,
	AddDataInfoSchema,
	DlcAddUserDataSchema,
}

// Types returns the registry entries of every schema in the catalogue.
func Types() []rsz.TypeInfo {
	out := make([]rsz.TypeInfo, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s.TypeInfo())
	}
	return out
}

// Registry returns a registry holding only this catalogue.
func Registry() (*rsz.Registry, error) {
	return rsz.NewRegistry(Types()...)
}
