// Package save implements the durable save format: JSON codec, integrity
// checksum, and the validation/sanitization pipeline that decides what
// restored state is trustworthy enough to feed back into the engine.
package save

import (
	"encoding/json"

	"github.com/nathoo/idlecore/types"
)

// Version is the current save format version.
const Version = 1

// SaveData is the JSON-serializable save format: the player state plus
// the format version and integrity checksum.
type SaveData struct {
	Version      int                            `json:"version"`
	LastSaveTime int64                          `json:"lastSaveTime"`
	Skills       map[types.SkillID]types.SkillState `json:"skills"`
	Inventory    map[string]int                 `json:"inventory"`
	Equipment    map[types.EquipmentSlot]string `json:"equipment"`
	Gold         int                            `json:"gold"`
	CurrentAction *types.Action                 `json:"currentAction"`
	Checksum     string                         `json:"checksum,omitempty"`
}

// FromPlayerState builds save data from a state snapshot, stamped with
// the given save time. The checksum is left for the caller to stamp.
func FromPlayerState(ps types.PlayerState, nowMs int64) SaveData {
	return SaveData{
		Version:       Version,
		LastSaveTime:  nowMs,
		Skills:        ps.Skills,
		Inventory:     ps.Inventory,
		Equipment:     ps.Equipment,
		Gold:          ps.Gold,
		CurrentAction: ps.CurrentAction,
	}
}

// ToPlayerState converts save data into a state snapshot; LastSaveTime
// becomes the tick anchor for offline-gap computation.
func (sd SaveData) ToPlayerState() types.PlayerState {
	return types.PlayerState{
		Skills:        sd.Skills,
		Inventory:     sd.Inventory,
		Equipment:     sd.Equipment,
		Gold:          sd.Gold,
		CurrentAction: sd.CurrentAction,
		LastTickTime:  sd.LastSaveTime,
	}
}

// Encode serializes save data to JSON bytes.
func Encode(sd SaveData) ([]byte, error) {
	return json.MarshalIndent(sd, "", "  ")
}

// Decode parses raw save bytes into an untyped tree for validation.
// Saves come from player-writable storage, so nothing about their shape
// can be trusted before the sanitizer has run; malformed JSON is the one
// unrecoverable case.
func Decode(raw []byte) (map[string]any, error) {
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
