package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stackit-app/stackit/backend/internal/models"
)

type TargetType string

const (
	TargetQuestion TargetType = "QUESTION"
	TargetAnswer   TargetType = "ANSWER"
)

const (
	VoteCreated = "created"
	VoteRemoved = "removed"
	VoteChanged = "changed"
)

// voteRetries bounds how often a cast that loses the (user, target)
// uniqueness race is replayed before giving up with ErrConflict.
const voteRetries = 3

type VoteService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewVoteService(db *gorm.DB, log *logrus.Logger) *VoteService {
	return &VoteService{db: db, log: log}
}

type VoteResult struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// CastVote applies one step of the vote state machine: no existing vote
// creates one, a same-direction vote is removed (toggle off), an opposite
// vote switches direction. The returned count is always derived from the
// vote rows, never cached.
func (s *VoteService) CastVote(voterID int, target TargetType, targetID int, direction string) (*VoteResult, error) {
	if direction != models.VoteUp && direction != models.VoteDown {
		return nil, &ValidationError{Field: "type", Rule: "must be UP or DOWN"}
	}

	for attempt := 0; attempt < voteRetries; attempt++ {
		outcome, err := s.castOnce(voterID, target, targetID, direction)
		if err != nil {
			if isUniqueViolation(err) {
				s.log.WithFields(logrus.Fields{
					"voter_id":  voterID,
					"target_id": targetID,
					"attempt":   attempt + 1,
				}).Warn("vote lost uniqueness race, retrying")
				continue
			}
			return nil, err
		}

		count, err := s.Count(target, targetID)
		if err != nil {
			return nil, err
		}
		return &VoteResult{Outcome: outcome, Count: count}, nil
	}

	return nil, ErrConflict
}

func (s *VoteService) castOnce(voterID int, target TargetType, targetID int, direction string) (string, error) {
	var outcome string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the target row so concurrent casts against it serialize.
		switch target {
		case TargetQuestion:
			var question models.Question
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&question, targetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
		case TargetAnswer:
			var answer models.Answer
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&answer, targetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
		default:
			return &ValidationError{Field: "target", Rule: "must be QUESTION or ANSWER"}
		}

		var existing models.Vote
		err := tx.Where(targetColumn(target)+" = ? AND user_id = ?", targetID, voterID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{UserID: voterID, Type: direction}
			if target == TargetQuestion {
				vote.QuestionID = &targetID
			} else {
				vote.AnswerID = &targetID
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			outcome = VoteCreated
		case err != nil:
			return err
		case existing.Type == direction:
			// Same direction again — toggle the vote off.
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			outcome = VoteRemoved
		default:
			existing.Type = direction
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			outcome = VoteChanged
		}
		return nil
	})

	return outcome, err
}

// Count derives the net vote count for a target as count(UP) - count(DOWN).
func (s *VoteService) Count(target TargetType, targetID int) (int, error) {
	var up, down int64
	col := targetColumn(target)

	if err := s.db.Model(&models.Vote{}).Where(col+" = ? AND type = ?", targetID, models.VoteUp).Count(&up).Error; err != nil {
		return 0, err
	}
	if err := s.db.Model(&models.Vote{}).Where(col+" = ? AND type = ?", targetID, models.VoteDown).Count(&down).Error; err != nil {
		return 0, err
	}
	return int(up - down), nil
}

// UserVote returns the direction of the user's vote on a target, or "" if
// they have not voted.
func (s *VoteService) UserVote(userID int, target TargetType, targetID int) (string, error) {
	var vote models.Vote
	err := s.db.Where(targetColumn(target)+" = ? AND user_id = ?", targetID, userID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return vote.Type, nil
}

// List returns the votes on a target together with the voters.
func (s *VoteService) List(target TargetType, targetID int) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.Where(targetColumn(target)+" = ?", targetID).Preload("User").Find(&votes).Error
	return votes, err
}

func targetColumn(target TargetType) string {
	if target == TargetAnswer {
		return "answer_id"
	}
	return "question_id"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
