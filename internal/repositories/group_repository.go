package repositories

import (
	"github.com/dots-fit/dots-backend/internal/models"
	"gorm.io/gorm"
)

// GroupRepository defines the interface for group chat data operations
type GroupRepository interface {
	// CreateGroup creates the group and its initial membership rows in one
	// transaction; the creator becomes admin.
	CreateGroup(group *models.GroupChat, memberIDs []uint) error
	GetGroupByID(id uint) (*models.GroupChat, error)
	ListGroupsForUser(userID uint) ([]models.GroupChat, error)
	UpdateGroup(group *models.GroupChat) error
	IsMember(groupID, userID uint) (bool, error)
	IsAdmin(groupID, userID uint) (bool, error)
	AddMember(groupID, userID uint) error
	RemoveMember(groupID, userID uint) error
	GetMemberIDs(groupID uint) ([]uint, error)
	GetMembers(groupID uint) ([]models.GroupMemberDetail, error)
	CountMembers(groupID uint) (int64, error)
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) CreateGroup(group *models.GroupChat, memberIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		creator := models.GroupMember{GroupID: group.ID, UserID: group.CreatedByID, IsAdmin: true}
		if err := tx.Create(&creator).Error; err != nil {
			return err
		}
		for _, userID := range memberIDs {
			if userID == group.CreatedByID {
				continue
			}
			member := models.GroupMember{GroupID: group.ID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresGroupRepository) GetGroupByID(id uint) (*models.GroupChat, error) {
	var group models.GroupChat
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PostgresGroupRepository) ListGroupsForUser(userID uint) ([]models.GroupChat, error) {
	var groups []models.GroupChat
	err := r.db.Where("id IN (?)",
		r.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID),
	).Find(&groups).Error
	return groups, err
}

func (r *PostgresGroupRepository) UpdateGroup(group *models.GroupChat) error {
	return r.db.Save(group).Error
}

func (r *PostgresGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.GroupMember{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresGroupRepository) IsAdmin(groupID, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND is_admin = ?", groupID, userID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresGroupRepository) AddMember(groupID, userID uint) error {
	return r.db.Create(&models.GroupMember{GroupID: groupID, UserID: userID}).Error
}

func (r *PostgresGroupRepository) RemoveMember(groupID, userID uint) error {
	res := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresGroupRepository) GetMemberIDs(groupID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
	return ids, err
}

func (r *PostgresGroupRepository) GetMembers(groupID uint) ([]models.GroupMemberDetail, error) {
	var rows []models.GroupMember
	if err := r.db.Where("group_id = ?", groupID).Find(&rows).Error; err != nil {
		return nil, err
	}
	admin := make(map[uint]bool, len(rows))
	ids := make([]uint, 0, len(rows))
	for _, m := range rows {
		admin[m.UserID] = m.IsAdmin
		ids = append(ids, m.UserID)
	}
	var users []models.User
	if len(ids) > 0 {
		if err := r.db.Where("id IN (?)", ids).Find(&users).Error; err != nil {
			return nil, err
		}
	}
	members := make([]models.GroupMemberDetail, 0, len(users))
	for _, u := range users {
		members = append(members, models.GroupMemberDetail{
			UserCompact: u.Compact(),
			IsAdmin:     admin[u.ID],
		})
	}
	return members, nil
}

func (r *PostgresGroupRepository) CountMembers(groupID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}
