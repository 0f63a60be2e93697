package validators

import "go.mongodb.org/mongo-driver/bson"

var ScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"resource_kind",
			"resource_id",
			"date",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"resource_kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"field", "coach"},
			},

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"date": bson.M{
				"bsonType":  "string",
				"minLength": 10,
				"maxLength": 10,
			},

			"booked_slots": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"start_time", "end_time"},
					"properties": bson.M{
						"start_time": bson.M{"bsonType": "string"},
						"end_time":   bson.M{"bsonType": "string"},
					},
				},
			},

			"is_holiday": bson.M{
				"bsonType": "bool",
			},

			"holiday_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"version": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
