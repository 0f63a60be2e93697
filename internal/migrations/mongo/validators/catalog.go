package validators

import "go.mongodb.org/mongo-driver/bson"

var FieldValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"opening_time",
			"closing_time",
			"base_price",
			"slot_duration_min",
			"created_at",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"owner_id":     bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"name":         bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"active":       bson.M{"bsonType": "bool"},
			"opening_time": bson.M{"bsonType": "string"},
			"closing_time": bson.M{"bsonType": "string"},
			"base_price":   bson.M{"bsonType": "long", "minimum": 0},
			"peak_rate":    bson.M{"bsonType": "double"},
			"peak_start":   bson.M{"bsonType": "string"},
			"peak_end":     bson.M{"bsonType": "string"},
			"min_slot_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},
			"max_slot_count": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},
			"slot_duration_min": bson.M{
				"bsonType": "int",
				"minimum":  15,
				"maximum":  240,
			},
			"amenities": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name", "fee"},
					"properties": bson.M{
						"name": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
						"fee":  bson.M{"bsonType": "long", "minimum": 0},
					},
				},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}

var CoachValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"hourly_rate",
			"opening_time",
			"closing_time",
			"created_at",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":          bson.M{"bsonType": "objectId"},
			"owner_id":     bson.M{"bsonType": "string", "minLength": 24, "maxLength": 24},
			"name":         bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"active":       bson.M{"bsonType": "bool"},
			"hourly_rate":  bson.M{"bsonType": "long", "minimum": 0},
			"opening_time": bson.M{"bsonType": "string"},
			"closing_time": bson.M{"bsonType": "string"},
			"created_at":   bson.M{"bsonType": "date"},
		},
	},
}
