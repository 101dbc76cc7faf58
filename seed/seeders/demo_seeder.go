package seeders

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services"
	"github.com/heartletter/letter_api/shared"
)

var demoAnswers = []string{
	"I'm a second-year university student living alone in a small studio.",
	"I notice small details others miss. [🔥 포기란 없다! 끈기 대장!] I kept going through a hard semester. [❤️ 공감 천재] Friends say I listen well.",
	"I worry that I'm falling behind everyone around me.",
	"It's hard to ask for help because I don't want to be a burden.",
}

// DemoSeeder creates a user with onboarding answers and an empty letter
// session, enough to walk the letter flow locally.
type DemoSeeder struct {
	storage *services.StorageService
}

func NewDemoSeeder(storage *services.StorageService) *DemoSeeder {
	return &DemoSeeder{storage: storage}
}

func (s *DemoSeeder) SeedDemo(ctx context.Context, nickname, password string) error {
	user, err := seedUser(ctx, s.storage, nickname, password, shared.RoleUser)
	if err != nil {
		return err
	}

	existing, err := s.storage.Answers().ListAnswers(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.WithField("userId", user.ID).Info("Demo answers already exist, skipping")
		return nil
	}

	answers, err := s.storage.Answers().CreateAnswers(ctx, user.ID, demoAnswers)
	if err != nil {
		return err
	}

	session, err := s.storage.Sessions().CreateSession(ctx, &model.LetterSession{
		UserID:            user.ID,
		QuestionAnswersID: answers.ID,
		HighlightedItems:  []model.HighlightedItem{},
		CurrentStep:       1,
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"answersId": answers.ID, "sessionId": session.ID}).Info("Created demo answers and session")
	return nil
}
