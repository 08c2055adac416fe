package save

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// checksumSecret salts the payload. This deters casual save editing
// only; it is tamper-evident, not tamper-proof.
const checksumSecret = "idlecore-v1-anticheat"

// canonicalPayload is the checksummed projection of a save: mapping
// fields sorted by key, scalars verbatim, the current action reduced to
// its action ID so the hash stays stable across minor shape changes.
type canonicalPayload struct {
	V string   `json:"v"`
	T string   `json:"t"`
	S []string `json:"s"`
	I []string `json:"i"`
	E []string `json:"e"`
	G string   `json:"g"`
	A string   `json:"a"`
}

// Checksum computes the integrity tag for save data, ignoring any
// checksum already present.
func Checksum(sd SaveData) string {
	p := canonicalPayload{
		V: strconv.Itoa(sd.Version),
		T: strconv.FormatInt(sd.LastSaveTime, 10),
		G: strconv.Itoa(sd.Gold),
	}
	for id, sk := range sd.Skills {
		p.S = append(p.S, string(id)+":"+formatNumber(sk.XP))
	}
	for id, qty := range sd.Inventory {
		p.I = append(p.I, id+":"+strconv.Itoa(qty))
	}
	for slot, id := range sd.Equipment {
		p.E = append(p.E, string(slot)+":"+id)
	}
	if sd.CurrentAction != nil {
		p.A = sd.CurrentAction.ActionID
	}
	return hashPayload(p)
}

// VerifyChecksum recomputes the tag from the untyped save tree and
// compares it to the stored one. Runs before sanitization so that a
// tamper signal is distinguishable from a sanitization event.
func VerifyChecksum(tree map[string]any) bool {
	stored, ok := tree["checksum"].(string)
	if !ok || stored == "" {
		return false
	}

	p := canonicalPayload{
		V: rawNumber(tree["version"]),
		T: rawNumber(tree["lastSaveTime"]),
		G: rawNumber(tree["gold"]),
	}
	if skills, ok := tree["skills"].(map[string]any); ok {
		for id, v := range skills {
			xp := ""
			if sk, ok := v.(map[string]any); ok {
				xp = rawNumber(sk["xp"])
			}
			p.S = append(p.S, id+":"+xp)
		}
	}
	if inv, ok := tree["inventory"].(map[string]any); ok {
		for id, qty := range inv {
			p.I = append(p.I, id+":"+rawNumber(qty))
		}
	}
	if equip, ok := tree["equipment"].(map[string]any); ok {
		for slot, id := range equip {
			s, _ := id.(string)
			p.E = append(p.E, slot+":"+s)
		}
	}
	if action, ok := tree["currentAction"].(map[string]any); ok {
		p.A, _ = action["actionId"].(string)
	}
	return hashPayload(p) == stored
}

func hashPayload(p canonicalPayload) string {
	sort.Strings(p.S)
	sort.Strings(p.I)
	sort.Strings(p.E)
	raw, _ := json.Marshal(p)

	// djb2 variant: hash*33 XOR byte, folded to unsigned base-36.
	hash := uint32(5381)
	for _, b := range []byte(checksumSecret) {
		hash = ((hash << 5) + hash) ^ uint32(b)
	}
	for _, b := range raw {
		hash = ((hash << 5) + hash) ^ uint32(b)
	}
	return strconv.FormatUint(uint64(hash), 36)
}

// formatNumber renders a float the way JSON does: shortest form that
// round-trips, no trailing ".0" for integral values.
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "invalid"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// rawNumber formats an untyped JSON value for the payload. Non-numbers
// render empty, which makes any type corruption break the checksum.
func rawNumber(v any) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return formatNumber(f)
}
