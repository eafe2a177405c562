package snow

// IdType is the kind of item an inventory slot holds.
type IdType int32

const (
	IdTypeEmpty IdType = iota
	IdTypeWeapon
	IdTypeArmor
	IdTypeTalisman
	IdTypeLvBuffCage
)

func (t IdType) String() string {
	if name, ok := IdTypesEnum.Values[int64(t)]; ok {
		return name
	}
	return "IdType(?)"
}

// SaveLink identifies which linked save unlocks a DLC entry.
type SaveLink int32

const (
	SaveLinkTrialSnow SaveLink = iota
	SaveLinkTrialRush
	SaveLinkRush
	SaveLinkTrialKohaku
	SaveLinkRushMr
	SaveLinkNum
	SaveLinkInvalid
)

// Display returns the product name shown for the link.
func (s SaveLink) Display() string {
	switch s {
	case SaveLinkTrialSnow:
		return "Demo"
	case SaveLinkTrialRush:
		return "MHStories2 demo"
	case SaveLinkRush:
		return "MHStories2"
	case SaveLinkTrialKohaku:
		return "Sunbreak demo"
	case SaveLinkRushMr:
		return "Sunbreak + MHStories2"
	case SaveLinkNum:
		return "[Num]"
	}
	return "[Invalid]"
}

type SymbolColorData struct {
	IsEnable  bool
	IsDefault bool
	Vec       [3]int32
}

type CustomBuildupResult struct {
	ID         uint16 `rsz:"id"`
	ValueIndex uint32
	SkillID    uint8 `rsz:"skill_id"`
}

type EquipmentInventoryData struct {
	IdType                   IdType `rsz:"id_type"`
	IdVal                    uint32 `rsz:"id_val"`
	IsSetGuildCard           bool
	BowgunCustomizeType      int32
	PairInsectInventoryIndex int32
	HyakuryoSkillIdList      []uint32 `rsz:"hyakuryo_skill_id_list"`
	PrevHyakuryuSkillId      []uint32 `rsz:"prev_hyakuryu_skill_id"`
	HyakuryuModelId          uint32   `rsz:"hyakuryu_model_id"`
	HyakuryuColorData        *SymbolColorData
	BuildupPoint             int32
	IsLock                   bool
	TalismanDecoSlotNumList  []uint32
	TalismanSkillIdList      []uint8  `rsz:"talisman_skill_id_list"`
	TalismanSkillLevelList   []uint32 `rsz:"talisman_skill_level_list"`
	CustomEnable             bool
	CustomCount              int32
	CustomOpenIdArray        []uint16               `rsz:"custom_open_id_array"`
	CustomBuildup            []*CustomBuildupResult `rsz:"custom_buildup"`
	CustomBuildupType        *int8
	DecoIdList               []uint32 `rsz:"deco_id_list"`
	HyakuryuDecoId           uint32   `rsz:"hyakuryu_deco_id"`
}

// Talisman reports whether the slot holds a talisman.
func (e *EquipmentInventoryData) Talisman() bool {
	return e.IdType == IdTypeTalisman
}

type AddDataInfo struct {
	DlcID                  int32    `rsz:"dlc_id"`
	SlcID                  SaveLink `rsz:"slc_id"`
	PlWeaponList           []uint32
	PlArmorList            []uint32
	PlTalismanList         []*EquipmentInventoryData
	PlOverwearIdList       []uint32 `rsz:"pl_overwear_id_list"`
	OtOverwearIdList       []uint32 `rsz:"ot_overwear_id_list"`
	PlOverwearWeaponIdList []uint32 `rsz:"pl_overwear_weapon_id_list"`
}

// Talismans returns the non-empty talisman slots of the entry.
func (a *AddDataInfo) Talismans() []*EquipmentInventoryData {
	var out []*EquipmentInventoryData
	for _, t := range a.PlTalismanList {
		if t != nil && t.IdType != IdTypeEmpty {
			out = append(out, t)
		}
	}
	return out
}

type DlcAddUserData struct {
	AddDataInfoList []*AddDataInfo
}
