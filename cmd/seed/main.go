package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"voicescreen/internal/model"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	database := os.Getenv("MONGO_DATABASE")
	if database == "" {
		database = "voicescreen"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	jobs := []model.Job{
		{
			ID:              "job_backend_mid",
			Title:           "Backend Engineer",
			Level:           "Mid",
			ExperienceYears: "3-5 years",
			Description:     "Build and operate the services behind our hiring platform: REST APIs, async pipelines, and the data stores underneath them.",
			MustHaveSkills:  []string{"Go", "PostgreSQL", "REST API design"},
			NiceToHaveSkills: []string{
				"Redis",
				"Kubernetes",
				"message queues",
			},
			TechnicalFocusAreas:  []string{"distributed systems", "database modeling"},
			BehavioralFocusAreas: []string{"ownership", "handling ambiguity"},
		},
		{
			ID:              "job_frontend_senior",
			Title:           "Senior Frontend Engineer",
			Level:           "Senior",
			ExperienceYears: "5+ years",
			Description:     "Own the candidate-facing interview experience end to end, from component architecture to perceived latency.",
			MustHaveSkills:  []string{"TypeScript", "React", "state management"},
			NiceToHaveSkills: []string{
				"WebRTC",
				"accessibility",
				"design systems",
			},
			TechnicalFocusAreas:  []string{"performance profiling", "testing strategy"},
			BehavioralFocusAreas: []string{"mentoring", "cross-team collaboration"},
		},
		{
			ID:              "job_support_junior",
			Title:           "Customer Support Specialist",
			Level:           "Junior",
			ExperienceYears: "0-2 years",
			Description:     "First line of contact for candidates and recruiters using the platform.",
			MustHaveSkills:  []string{"written communication", "ticket triage", "product troubleshooting"},
			NiceToHaveSkills: []string{
				"SQL basics",
				"CRM tooling",
			},
			TechnicalFocusAreas:  []string{"support tooling"},
			BehavioralFocusAreas: []string{"empathy", "de-escalation"},
		},
	}

	coll := client.Database(database).Collection("jobs")
	for _, job := range jobs {
		opts := options.Replace().SetUpsert(true)
		if _, err := coll.ReplaceOne(ctx, bson.M{"_id": job.ID}, job, opts); err != nil {
			log.Fatalf("Failed to seed job %s: %v", job.ID, err)
		}
		fmt.Printf("Seeded job: %s (%s)\n", job.Title, job.ID)
	}

	fmt.Println("Done.")
}
