package service

import (
	"encoding/json"
	"fmt"
	"log"

	"showroom/internal/models"
	"showroom/internal/observability"
	"showroom/internal/repository"
	"showroom/internal/ws"
)

// NotificationService persists notifications and pushes them over the
// hub to whoever is connected. Persistence failures are returned; push
// is best effort.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	hub      *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, hub: hub}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	s.push(n)
	return nil
}

func (s *NotificationService) push(n *models.Notification) {
	if s.hub == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(n.UserID)
	if err != nil || u == nil {
		log.Printf("[notify] push skipped, user %d not found", n.UserID)
		return
	}
	s.hub.NotifyUser(u.Email, n)
	observability.IncNotificationDelivered()
}

func (s *NotificationService) NotifyGroupInvite(studentID, groupID uint, groupName, inviterName string) error {
	return s.Notify(studentID, "Info", "Group invitation",
		fmt.Sprintf("%s invited you to join %s", inviterName, groupName),
		map[string]interface{}{"groupId": groupID})
}

func (s *NotificationService) NotifyProjectSubmitted(instructorID, projectID uint, projectName, groupName string) error {
	return s.Notify(instructorID, "Info", "Project submitted",
		fmt.Sprintf("%s submitted %s for review", groupName, projectName),
		map[string]interface{}{"projectId": projectID})
}

func (s *NotificationService) NotifyProjectGraded(studentID, projectID uint, projectName string, grade float64) error {
	return s.Notify(studentID, "Success", "Project graded",
		fmt.Sprintf("%s has been graded: %.1f", projectName, grade),
		map[string]interface{}{"projectId": projectID, "grade": grade})
}

func (s *NotificationService) NotifySyllabusPublished(studentID, syllabusID uint, title string) error {
	return s.Notify(studentID, "Info", "New course material",
		fmt.Sprintf("Syllabus %q was published for your class", title),
		map[string]interface{}{"syllabusId": syllabusID})
}
