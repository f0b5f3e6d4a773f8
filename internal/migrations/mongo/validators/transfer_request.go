package validators

import "go.mongodb.org/mongo-driver/bson"

var TransferRequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"original_booking_id",
			"candidate_ride_id",
			"reason",
			"status",
			"expires_at",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"original_booking_id": bson.M{
				"bsonType": "string",
			},

			"candidate_ride_id": bson.M{
				"bsonType": "string",
			},

			"compatibility_score": bson.M{
				"bsonType": []string{"double", "int", "long"},
			},

			"reason": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"status": bson.M{
				"enum": []string{"offered", "accepted", "declined", "expired"},
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
