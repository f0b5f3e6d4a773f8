package validators

import "go.mongodb.org/mongo-driver/bson"

// Claims carry their uniqueness in the _id; the validators only pin the shape.

var SeatClaimValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"ride_id",
			"seat_id",
			"booking_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"ride_id": bson.M{
				"bsonType": "string",
			},
			"seat_id": bson.M{
				"bsonType": "string",
			},
			"booking_id": bson.M{
				"bsonType": "string",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var PassengerClaimValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"ride_id",
			"passenger_id",
			"booking_id",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"ride_id": bson.M{
				"bsonType": "string",
			},
			"passenger_id": bson.M{
				"bsonType": "string",
			},
			"booking_id": bson.M{
				"bsonType": "string",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
