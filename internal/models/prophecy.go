package models

import "time"

// ProphecyCategory is the closed set of prophecy classifications.
type ProphecyCategory string

const (
	CategoryBirthCircumstances     ProphecyCategory = "birth_circumstances"
	CategoryGenealogyLineage       ProphecyCategory = "genealogy_lineage"
	CategoryGeographicLocations    ProphecyCategory = "geographic_locations"
	CategoryMinistryMission        ProphecyCategory = "ministry_mission"
	CategoryCharacterAttributes    ProphecyCategory = "character_attributes"
	CategoryDeathCrucifixion       ProphecyCategory = "death_crucifixion"
	CategoryResurrectionExaltation ProphecyCategory = "resurrection_exaltation"
	CategorySecondComing           ProphecyCategory = "second_coming"
	CategoryKingdomReign           ProphecyCategory = "kingdom_reign"
	CategoryPriestlyWork           ProphecyCategory = "priestly_work"
	CategoryPropheticOffice        ProphecyCategory = "prophetic_office"
	CategoryDivineNature           ProphecyCategory = "divine_nature"
)

var prophecyCategories = map[ProphecyCategory]bool{
	CategoryBirthCircumstances:     true,
	CategoryGenealogyLineage:       true,
	CategoryGeographicLocations:    true,
	CategoryMinistryMission:        true,
	CategoryCharacterAttributes:    true,
	CategoryDeathCrucifixion:       true,
	CategoryResurrectionExaltation: true,
	CategorySecondComing:           true,
	CategoryKingdomReign:           true,
	CategoryPriestlyWork:           true,
	CategoryPropheticOffice:        true,
	CategoryDivineNature:           true,
}

// Valid reports whether c is a known category.
func (c ProphecyCategory) Valid() bool { return prophecyCategories[c] }

// FulfillmentType classifies how a fulfillment relates to its prophecy.
type FulfillmentType string

const (
	FulfillmentDirect      FulfillmentType = "direct"
	FulfillmentTypological FulfillmentType = "typological"
	FulfillmentThematic    FulfillmentType = "thematic"
	FulfillmentProgressive FulfillmentType = "progressive"
	FulfillmentInaugurated FulfillmentType = "inaugurated"
)

var fulfillmentTypes = map[FulfillmentType]bool{
	FulfillmentDirect:      true,
	FulfillmentTypological: true,
	FulfillmentThematic:    true,
	FulfillmentProgressive: true,
	FulfillmentInaugurated: true,
}

// Valid reports whether t is a known fulfillment type.
func (t FulfillmentType) Valid() bool { return fulfillmentTypes[t] }

// FulfillmentReference points from a prophecy to a verse range held to
// satisfy it. Both the human-readable triple and the resolved verse ids
// are stored; the import pipeline is the sole integrity guard keeping
// them consistent.
type FulfillmentReference struct {
	BookName        string          `json:"book_name" db:"book_name"`
	Chapter         int             `json:"chapter" db:"chapter"`
	VerseStart      int             `json:"verse_start" db:"verse_start"`
	VerseEnd        int             `json:"verse_end" db:"verse_end"`
	VerseStartID    int64           `json:"verse_start_id" db:"verse_start_id"`
	VerseEndID      int64           `json:"verse_end_id" db:"verse_end_id"`
	FulfillmentType FulfillmentType `json:"fulfillment_type" db:"fulfillment_type"`
}

// ProphecyRecord is an imported prophecy claim anchored to a verse range.
// Immutable once committed; re-import replaces wholesale.
type ProphecyRecord struct {
	ID                     int64                  `json:"id" db:"id"`
	Claim                  string                 `json:"claim" db:"claim"`
	Category               ProphecyCategory       `json:"category" db:"category"`
	ProphecyVerseStart     int64                  `json:"prophecy_verse_start" db:"prophecy_verse_start"`
	ProphecyVerseEnd       int64                  `json:"prophecy_verse_end" db:"prophecy_verse_end"`
	FulfillmentReferences  []FulfillmentReference `json:"fulfillment_references"`
	FulfillmentExplanation string                 `json:"fulfillment_explanation" db:"fulfillment_explanation"`
	GeneratedFromBook      string                 `json:"generated_from_book" db:"generated_from_book"`
	CreatedAt              time.Time              `json:"created_at" db:"created_at"`
}

// FulfillmentMatch pairs a fulfillment reference with its prophecy for
// "what fulfills in this chapter" queries.
type FulfillmentMatch struct {
	Prophecy    ProphecyRecord       `json:"prophecy"`
	Fulfillment FulfillmentReference `json:"fulfillment"`
}

// ChapterHighlights collects prophecy activity within one chapter:
// prophecies anchored there and fulfillments pointing into it.
type ChapterHighlights struct {
	Book         string             `json:"book"`
	Chapter      int                `json:"chapter"`
	Prophecies   []ProphecyRecord   `json:"prophecies"`
	Fulfillments []FulfillmentMatch `json:"fulfillments"`
}

// CategoryCount is one row of the category stats aggregate.
type CategoryCount struct {
	Category ProphecyCategory `json:"category" db:"category"`
	Count    int              `json:"count" db:"count"`
}
