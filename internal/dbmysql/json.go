package dbmysql

import "gorm.io/datatypes"

// Wrappers so callers build typed JSON columns without importing
// datatypes everywhere.

func MetadataJSON(m ConversationMetadata) datatypes.JSONType[ConversationMetadata] {
	return datatypes.NewJSONType(m)
}

func BookingJSON(b BookingState) datatypes.JSONType[BookingState] {
	return datatypes.NewJSONType(b)
}

func ReplyJSON(r *ReplySnapshot) datatypes.JSONType[*ReplySnapshot] {
	return datatypes.NewJSONType(r)
}

func TemplateJSON(t ResponseTemplate) datatypes.JSONType[ResponseTemplate] {
	return datatypes.NewJSONType(t)
}

func ResponsesJSON(m map[string]ResponseTemplate) datatypes.JSONType[map[string]ResponseTemplate] {
	return datatypes.NewJSONType(m)
}
