// Package snow declares a small catalogue of game-data schemas: the DLC
// add-data tables and the equipment inventory records they embed.
//
// Every schema carries its structural hash and revision checksums as fixed
// constants. Register them with:
//
//	reg, err := snow.Registry()
//
// or merge Types() into a wider registry. The Go types in this package are
// unmarshal targets for rsz.Unmarshal:
//
//	var dlc snow.DlcAddUserData
//	err := rsz.Unmarshal(obj.Value, &dlc)
package snow
