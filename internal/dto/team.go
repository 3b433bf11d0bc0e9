package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uint64          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	OwnerID     uint64          `json:"owner_id"`
	Owner       *UserDTO        `json:"owner,omitempty"`
	Members     []TeamMemberDTO `json:"members,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TeamMemberDTO represents a team membership in API responses
type TeamMemberDTO struct {
	UserID   uint64          `json:"user_id"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
	User     *UserDTO        `json:"user,omitempty"`
}

// ToTeamMemberDTO converts a TeamMember model to TeamMemberDTO
func ToTeamMemberDTO(member models.TeamMember) TeamMemberDTO {
	d := TeamMemberDTO{
		UserID:   member.UserID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		d.User = &user
	}
	return d
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	d := TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		OwnerID:     team.OwnerID,
		CreatedAt:   team.CreatedAt,
	}
	if team.Owner.ID != 0 {
		owner := ToUserDTO(team.Owner)
		d.Owner = &owner
	}
	if len(team.Members) > 0 {
		d.Members = make([]TeamMemberDTO, len(team.Members))
		for i, m := range team.Members {
			d.Members[i] = ToTeamMemberDTO(m)
		}
	}
	return d
}
