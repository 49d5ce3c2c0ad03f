package analyzer

import (
	"fmt"
	"strings"
)

// Theological perspectives form a closed enumeration; requests naming an
// unknown perspective are rejected before any generation happens.
const (
	PerspectiveCatholic        = "catholic"
	PerspectiveEasternOrthodox = "eastern_orthodox"
	PerspectiveOrientalOrthodox = "oriental_orthodox"
	PerspectiveChurchOfTheEast = "church_of_the_east"
	PerspectiveBaptist         = "baptist"
	PerspectiveAnglican        = "anglican"
	PerspectiveMethodist       = "methodist"
	PerspectivePentecostal     = "pentecostal"
	PerspectiveLutheran        = "lutheran"
	PerspectivePresbyterian    = "presbyterian"
	PerspectivePuritan         = "puritan"
	PerspectiveDutchReformed   = "dutch_reformed"
	PerspectiveMoravian        = "moravian"
)

// AllPerspectives lists the valid perspective identifiers.
var AllPerspectives = []string{
	PerspectiveCatholic,
	PerspectiveEasternOrthodox,
	PerspectiveOrientalOrthodox,
	PerspectiveChurchOfTheEast,
	PerspectiveBaptist,
	PerspectiveAnglican,
	PerspectiveMethodist,
	PerspectivePentecostal,
	PerspectiveLutheran,
	PerspectivePresbyterian,
	PerspectivePuritan,
	PerspectiveDutchReformed,
	PerspectiveMoravian,
}

// DefaultPerspectives is used when a request names none.
var DefaultPerspectives = []string{PerspectiveCatholic, PerspectiveBaptist}

var validPerspectives = func() map[string]bool {
	m := make(map[string]bool, len(AllPerspectives))
	for _, p := range AllPerspectives {
		m[p] = true
	}
	return m
}()

// ValidPerspective reports whether name is a known perspective.
func ValidPerspective(name string) bool {
	return validPerspectives[name]
}

// ValidatePerspectives checks every name against the closed set.
func ValidatePerspectives(names []string) error {
	var invalid []string
	for _, n := range names {
		if !validPerspectives[n] {
			invalid = append(invalid, n)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid perspectives: %s (valid: %s)",
			strings.Join(invalid, ", "), strings.Join(AllPerspectives, ", "))
	}
	return nil
}

// DisplayName renders a perspective identifier for prose ("eastern
// orthodox" for "eastern_orthodox").
func DisplayName(perspective string) string {
	return strings.ReplaceAll(perspective, "_", " ")
}

// perspectiveEmphases steers generation toward each tradition's
// distinctives. Keyed by perspective identifier.
var perspectiveEmphases = map[string]string{
	PerspectiveCatholic:        "Sacred Tradition alongside Scripture, magisterial authority, sacramental theology and grace, the communion of saints",
	PerspectiveEasternOrthodox: "theosis as the goal of Christian life, patristic sources, liturgical and mystical tradition, the Trinity and divine energies",
	PerspectiveOrientalOrthodox: "miaphysite Christology, ancient liturgical traditions, patristic heritage, monastic spirituality",
	PerspectiveChurchOfTheEast: "dyophysite Christology, Syriac liturgical and theological tradition, the East Syriac Rite",
	PerspectiveBaptist:         "believer's baptism, congregational governance, soul liberty, the authority of Scripture, personal relationship with Christ",
	PerspectiveAnglican:        "the via media, the Book of Common Prayer, episcopal polity, Scripture, tradition and reason as authorities",
	PerspectiveMethodist:       "prevenient grace and free will, personal holiness and sanctification, the Wesleyan quadrilateral, works of mercy and piety",
	PerspectivePentecostal:     "baptism in the Holy Spirit, divine healing, the gifts of the Spirit, expectation of Christ's imminent return",
	PerspectiveLutheran:        "justification by faith alone, law and gospel distinction, the priesthood of all believers, sacramental baptism and communion",
	PerspectivePresbyterian:    "Reformed theology and the Westminster standards, the sovereignty of God, covenant theology, the sufficiency of Scripture",
	PerspectivePuritan:         "covenant theology, experimental religion and personal piety, the regulative principle of worship, preaching and catechesis",
	PerspectiveDutchReformed:   "the Three Forms of Unity, covenant theology, sphere sovereignty, the antithesis between belief and unbelief",
	PerspectiveMoravian:        "personal relationship with Christ, unity of the Spirit, heartfelt worship, missionary zeal, community life",
}
