package utils

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tutordesk/models"
)

// Activity actions recorded in the team audit trail
const (
	ActivitySignUp       = "SIGN_UP"
	ActivitySignIn       = "SIGN_IN"
	ActivitySignOut      = "SIGN_OUT"
	ActivityCreateTeam   = "CREATE_TEAM"
	ActivityInviteMember = "INVITE_TEAM_MEMBER"
	ActivityAcceptInvite = "ACCEPT_INVITATION"
	ActivityDeleteChat   = "DELETE_CHAT"
	ActivityDeleteFile   = "DELETE_FILE"
)

// LogActivity appends one audit row. Failures are logged and swallowed:
// the audit trail never blocks the request that produced it.
func LogActivity(db *gorm.DB, teamID uint, userID *uint, action, ip string) {
	entry := models.ActivityLog{
		TeamID:    teamID,
		UserID:    userID,
		Action:    action,
		IPAddress: ip,
	}
	if err := db.Create(&entry).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"team_id": teamID,
			"action":  action,
		}).WithError(err).Warn("failed to record activity")
	}
}
