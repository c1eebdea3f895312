package domain

import "strings"

// NormalizeName trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for trip name normalization.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeItemType maps a stored type label onto the ItemType enum.
// Legacy records carry Spanish labels (Vuelo, Tren, Hotel, Actividad);
// unknown labels map to ItemTypeOther.
func NormalizeItemType(s string) ItemType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flight", "vuelo":
		return ItemTypeFlight
	case "train", "tren":
		return ItemTypeTrain
	case "hotel":
		return ItemTypeHotel
	case "activity", "actividad":
		return ItemTypeActivity
	default:
		return ItemTypeOther
	}
}
