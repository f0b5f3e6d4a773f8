package validators

import "go.mongodb.org/mongo-driver/bson"

var RideValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"origin",
			"destination",
			"total_seats",
			"available_seats",
			"base_price",
			"status",
			"departure_time",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"origin": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"destination": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"total_seats": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  200,
			},

			"available_seats": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"base_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"active", "cancelled", "completed"},
			},

			"departure_time": bson.M{
				"bsonType": "date",
			},

			"seat_assignment": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
