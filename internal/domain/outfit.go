package domain

// OutfitSlot is the cosmetic slot an outfit occupies. Only one outfit total
// may be equipped at a time, regardless of slot.
type OutfitSlot string

const (
	SlotHat       OutfitSlot = "hat"
	SlotGlasses   OutfitSlot = "glasses"
	SlotAccessory OutfitSlot = "accessory"
)

// Outfit is a purchasable cosmetic for the starfish.
type Outfit struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Price int        `json:"price"`
	Slot  OutfitSlot `json:"slot"`
}

// AvailableOutfits is the static store catalog.
var AvailableOutfits = []Outfit{
	{ID: "sunglasses", Name: "Cool Shades", Price: 5, Slot: SlotGlasses},
	{ID: "partyhat", Name: "Party Hat", Price: 10, Slot: SlotHat},
	{ID: "bowtie", Name: "Dapper Bowtie", Price: 8, Slot: SlotAccessory},
	{ID: "crown", Name: "Golden Crown", Price: 25, Slot: SlotHat},
	{ID: "monocle", Name: "Sophisticated Monocle", Price: 12, Slot: SlotGlasses},
}

// OutfitByID looks up a catalog entry. Returns nil for unknown ids.
func OutfitByID(id string) *Outfit {
	for i := range AvailableOutfits {
		if AvailableOutfits[i].ID == id {
			return &AvailableOutfits[i]
		}
	}
	return nil
}
