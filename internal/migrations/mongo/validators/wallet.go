package validators

import "go.mongodb.org/mongo-driver/bson"

var WalletValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner_id", "role", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":      bson.M{"bsonType": "objectId"},
			"owner_id": bson.M{"bsonType": "string", "minLength": 1},
			"role": bson.M{
				"bsonType": "string",
				"enum":     []string{"platform", "owner", "customer"},
			},
			"system_balance":    bson.M{"bsonType": "long"},
			"pending_balance":   bson.M{"bsonType": "long", "minimum": 0},
			"available_balance": bson.M{"bsonType": "long", "minimum": 0},
			"refund_balance":    bson.M{"bsonType": "long", "minimum": 0},
			"created_at":        bson.M{"bsonType": "date"},
		},
	},
}
