package validators

import "go.mongodb.org/mongo-driver/bson"

var PaymentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"purpose",
			"amount",
			"method",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"purpose": bson.M{
				"bsonType": "string",
				"enum": []string{
					"BOOKING_PAYMENT",
					"ACCOUNT_VERIFICATION",
					"WITHDRAWAL",
					"REFUND",
				},
			},

			"amount": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"method": bson.M{
				"bsonType": "string",
				"enum": []string{
					"cash",
					"bank_transfer",
					"payos",
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"PENDING",
					"PROCESSING",
					"SUCCEEDED",
					"FAILED",
					"REFUNDED",
				},
			},

			"gateway_order_code": bson.M{
				"bsonType": "long",
			},

			"checkout_url": bson.M{
				"bsonType": "string",
			},

			"booking_id": bson.M{
				"bsonType": "string",
			},

			"group_id": bson.M{
				"bsonType": "string",
			},

			"user_id": bson.M{
				"bsonType": "string",
			},

			"owner_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
