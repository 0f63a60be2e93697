package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customer_id",
			"owner_id",
			"date",
			"start_time",
			"end_time",
			"status",
			"payment_status",
			"method",
			"price",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"field_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"coach_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"group_id": bson.M{
				"bsonType": "string",
			},

			"date": bson.M{
				"bsonType":  "string",
				"minLength": 10,
				"maxLength": 10,
			},

			"start_time": bson.M{
				"bsonType": "string",
			},

			"end_time": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"completed",
					"cancelled",
				},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"unpaid",
					"paid",
					"refunded",
				},
			},

			"method": bson.M{
				"bsonType": "string",
				"enum": []string{
					"cash",
					"bank_transfer",
					"payos",
				},
			},

			"note": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"price": bson.M{
				"bsonType": "object",
				"required": []string{"base", "total"},
				"properties": bson.M{
					"base":          bson.M{"bsonType": "long"},
					"multiplier":    bson.M{"bsonType": "double"},
					"amenities_fee": bson.M{"bsonType": "long"},
					"total":         bson.M{"bsonType": "long", "minimum": 0},
				},
			},

			"payment_id": bson.M{
				"bsonType": "string",
			},

			"cancel_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
