package snow

import (
	"github.com/wippyai/rsz"
	"github.com/wippyai/rsz/version"
)

// Build numbers that introduce layout revisions.
const (
	V10_00_02 version.Version = 10_00_02
	V11_00_01 version.Version = 11_00_01
	V12_00_00 version.Version = 12_00_00
	V13_00_00 version.Version = 13_00_00
	V14_00_00 version.Version = 14_00_00
	V15_00_00 version.Version = 15_00_00
	V16_00_00 version.Version = 16_00_00
)

// DlcAddUserDataPath is the resource path of the DLC add-data table.
const DlcAddUserDataPath = "data/Define/DLC/DlcAddUserData.user"

// IdTypesEnum is snow.data.EquipmentInventoryData.IdTypes.
var IdTypesEnum = &rsz.EnumType{
	Name: "snow.data.EquipmentInventoryData.IdTypes",
	Base: rsz.KindS32,
	Values: map[int64]string{
		0: "Empty",
		1: "Weapon",
		2: "Armor",
		3: "Talisman",
		4: "LvBuffCage",
	},
}

// SaveLinkContentsEnum is snow.DlcManager.SaveLinkContents.
var SaveLinkContentsEnum = &rsz.EnumType{
	Name: "snow.DlcManager.SaveLinkContents",
	Base: rsz.KindS32,
	Values: map[int64]string{
		0: "TrialSnow",
		1: "TrialRush",
		2: "Rush",
		3: "TrialKohaku",
		4: "RushMr",
		5: "Num",
		6: "Invalid",
	},
}

var SymbolColorDataSchema = &rsz.Schema{
	Symbol: "snow.data.SymbolColorData",
	Hash:   0x67A9855E,
	Revisions: version.Revisions(
		version.Entry{Checksum: 0x3E133A29, Since: V10_00_02},
	),
	Fields: []rsz.Field{
		rsz.Bool("is_enable"),
		rsz.Bool("is_default"),
		rsz.IVec3("vec"),
	},
}

var CustomBuildupResultSchema = &rsz.Schema{
	Symbol: "snow.data.EquipmentInventoryData.CustomBuildupResult",
	Hash:   0xA9E18A57,
	Revisions: version.Revisions(
		version.Entry{Checksum: 0xAB818101, Since: V15_00_00},
		version.Entry{Checksum: 0x694F7865, Since: V13_00_00},
		version.Entry{Checksum: 0x6766A8A7, Since: V11_00_01},
	),
	Fields: []rsz.Field{
		rsz.U16("id"),
		rsz.U32("value_index"),
		rsz.U8("skill_id"),
	},
}

var EquipmentInventoryDataSchema = &rsz.Schema{
	Symbol: "snow.data.EquipmentInventoryData",
	Hash:   0xE9F10309,
	Revisions: version.Revisions(
		version.Entry{Checksum: 0xF36A2348, Since: V15_00_00},
		version.Entry{Checksum: 0x7D64033A, Since: V14_00_00},
		version.Entry{Checksum: 0x64D86CBB, Since: V13_00_00},
		version.Entry{Checksum: 0x52ACFD89, Since: V12_00_00},
		version.Entry{Checksum: 0xF90B8D8C, Since: V11_00_01},
		version.Entry{Checksum: 0xA13D184B, Since: V10_00_02},
	),
	Fields: []rsz.Field{
		rsz.Enum("id_type", IdTypesEnum),
		rsz.U32("id_val"),
		rsz.Versioned(V11_00_01, rsz.Bool("is_set_guild_card")),
		rsz.S32("bowgun_customize_type"),
		rsz.S32("pair_insect_inventory_index"),
		rsz.List("hyakuryo_skill_id_list", rsz.U32("")),
		rsz.List("prev_hyakuryu_skill_id", rsz.U32("")),
		rsz.U32("hyakuryu_model_id"),
		rsz.Child("hyakuryu_color_data"),
		rsz.S32("buildup_point"),
		rsz.Bool("is_lock"),
		rsz.List("talisman_deco_slot_num_list", rsz.U32("")),
		rsz.List("talisman_skill_id_list", rsz.U8("")),
		rsz.List("talisman_skill_level_list", rsz.U32("")),
		rsz.Versioned(V11_00_01, rsz.Bool("custom_enable")),
		rsz.Versioned(V11_00_01, rsz.S32("custom_count")),
		rsz.Versioned(V11_00_01, rsz.List("custom_open_id_array", rsz.U16(""))),
		rsz.Versioned(V11_00_01, rsz.List("custom_buildup", rsz.Child(""))),
		rsz.Versioned(V13_00_00, rsz.S8("custom_buildup_type")),
		rsz.List("deco_id_list", rsz.U32("")),
		rsz.U32("hyakuryu_deco_id"),
	},
}

var AddDataInfoSchema = &rsz.Schema{
	Symbol: "snow.data.Dlc.DlcAddUserData.AddDataInfo",
	Hash:   0x2A56F21F,
	Revisions: version.Revisions(
		version.Entry{Checksum: 0xBCDA8578, Since: V16_00_00},
		version.Entry{Checksum: 0x341A606F, Since: V15_00_00},
		version.Entry{Checksum: 0x3F93B141, Since: V14_00_00},
		version.Entry{Checksum: 0x9B59BC74, Since: V13_00_00},
		version.Entry{Checksum: 0x377D23C5, Since: V12_00_00},
		version.Entry{Checksum: 0xFD14730E, Since: V11_00_01},
		version.Entry{Checksum: 0xB32786A9, Since: V10_00_02},
	),
	Fields: []rsz.Field{
		rsz.S32("dlc_id"),
		rsz.Enum("slc_id", SaveLinkContentsEnum),
		rsz.List("pl_weapon_list", rsz.U32("")),
		rsz.List("pl_armor_list", rsz.U32("")),
		rsz.List("pl_talisman_list", rsz.Child("")),
		rsz.List("pl_overwear_id_list", rsz.U32("")),
		rsz.List("ot_overwear_id_list", rsz.U32("")),
		rsz.Versioned(V12_00_00, rsz.List("pl_overwear_weapon_id_list", rsz.U32(""))),
	},
}

var DlcAddUserDataSchema = &rsz.Schema{
	Symbol: "snow.data.Dlc.DlcAddUserData",
	Hash:   0x3E48BE8E,
	Revisions: version.Revisions(
		version.Entry{Checksum: 0x4C2CD0C1, Since: V10_00_02},
	),
	Fields: []rsz.Field{
		rsz.List("add_data_info_list", rsz.Child("")),
	},
}
