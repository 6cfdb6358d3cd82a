package proto

import "fmt"

// BlockType identifies a block material and its variant. Two blocks are only
// equal if both fields match, so a rotated stair is not its base form.
type BlockType struct {
	ID  int32
	Mod int32
}

func Block(id int32) BlockType {
	return BlockType{ID: id}
}

func (b BlockType) WithMod(mod int32) BlockType {
	return BlockType{ID: b.ID, Mod: mod}
}

func (b BlockType) String() string {
	return fmt.Sprintf("[%d, %d]", b.ID, b.Mod)
}

// Legacy numeric ids understood by the server plugin.
var (
	Air               = BlockType{0, 0}
	Stone             = BlockType{1, 0}
	Granite           = BlockType{1, 1}
	PolishedGranite   = BlockType{1, 2}
	Diorite           = BlockType{1, 3}
	Andesite          = BlockType{1, 5}
	Grass             = BlockType{2, 0}
	Dirt              = BlockType{3, 0}
	Cobblestone       = BlockType{4, 0}
	OakWoodPlank      = BlockType{5, 0}
	SpruceWoodPlank   = BlockType{5, 1}
	DarkOakWoodPlank  = BlockType{5, 5}
	Bedrock           = BlockType{7, 0}
	FlowingWater      = BlockType{8, 0}
	StillWater        = BlockType{9, 0}
	FlowingLava       = BlockType{10, 0}
	StillLava         = BlockType{11, 0}
	Sand              = BlockType{12, 0}
	RedSand           = BlockType{12, 1}
	Gravel            = BlockType{13, 0}
	GoldOre           = BlockType{14, 0}
	IronOre           = BlockType{15, 0}
	CoalOre           = BlockType{16, 0}
	OakWood           = BlockType{17, 0}
	OakLeaves         = BlockType{18, 0}
	Glass             = BlockType{20, 0}
	LapisLazuliBlock  = BlockType{22, 0}
	Sandstone         = BlockType{24, 0}
	WhiteWool         = BlockType{35, 0}
	GoldBlock         = BlockType{41, 0}
	IronBlock         = BlockType{42, 0}
	StoneSlab         = BlockType{44, 0}
	Bricks            = BlockType{45, 0}
	TNT               = BlockType{46, 0}
	Bookshelf         = BlockType{47, 0}
	MossStone         = BlockType{48, 0}
	Obsidian          = BlockType{49, 0}
	Torch             = BlockType{50, 0}
	DiamondBlock      = BlockType{57, 0}
	CraftingTable     = BlockType{58, 0}
	Farmland          = BlockType{60, 0}
	Furnace           = BlockType{61, 0}
	Ice               = BlockType{79, 0}
	SnowBlock         = BlockType{80, 0}
	Clay              = BlockType{82, 0}
	Pumpkin           = BlockType{86, 0}
	Netherrack        = BlockType{87, 0}
	Glowstone         = BlockType{89, 0}
	WhiteStainedGlass = BlockType{95, 0}
	StoneBricks       = BlockType{98, 0}
	MelonBlock        = BlockType{103, 0}
	EmeraldBlock      = BlockType{133, 0}
	RedstoneBlock     = BlockType{152, 0}
	QuartzBlock       = BlockType{155, 0}
	SeaLantern        = BlockType{169, 0}
	MagmaBlock        = BlockType{213, 0}
	BoneBlock         = BlockType{216, 0}
	WhiteConcrete     = BlockType{251, 0}
	OrangeConcrete    = BlockType{251, 1}
	LightBlueConcrete = BlockType{251, 3}
	YellowConcrete    = BlockType{251, 4}
	BlueConcrete      = BlockType{251, 11}
	GreenConcrete     = BlockType{251, 13}
	RedConcrete       = BlockType{251, 14}
	BlackConcrete     = BlockType{251, 15}
)
