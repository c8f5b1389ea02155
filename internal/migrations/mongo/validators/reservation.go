package validators

import "go.mongodb.org/mongo-driver/bson"

var paymentSchema = bson.M{
	"bsonType": "object",
	"required": []string{"id", "amount", "method", "status", "paid_at"},
	"properties": bson.M{
		"id": bson.M{
			"bsonType":  "string",
			"minLength": 1,
		},
		"amount": bson.M{
			"bsonType":         "double",
			"exclusiveMinimum": true,
			"minimum":          0,
		},
		"method": bson.M{
			"bsonType": "string",
			"enum":     []string{"cash", "transfer", "card", "check", "other"},
		},
		"status": bson.M{
			"bsonType": "string",
			"enum":     []string{"pending", "paid", "failed", "refunded"},
		},
		"paid_at": bson.M{
			"bsonType": "date",
		},
		"reference": bson.M{
			"bsonType":  "string",
			"maxLength": 200,
		},
	},
}

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"property_id",
			"client_id",
			"created_by",
			"start_date",
			"end_date",
			"state",
			"total_amount",
			"deposit_paid",
			"guest_count",
			"payments",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"client_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"created_by": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"state": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"total_amount": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"deposit_paid": bson.M{
				"bsonType": "double",
				"minimum":  0,
			},

			"guest_count": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  500,
			},

			"payments": bson.M{
				"bsonType": "array",
				"items":    paymentSchema,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 4000,
			},

			"confirmed_at": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"cancelled_at": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"checked_out_at": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"version": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
