package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stakesure/internal/errs"
	"stakesure/internal/infrastructure/persistence/sqlite/model"
	"stakesure/internal/ports"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) CreateGroup(ctx context.Context) (uint64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	row := model.AssessorGroup{}
	if err := db.Create(&row).Error; err != nil {
		return 0, errs.Wrap(err, "insert assessor group")
	}
	return row.GroupID, nil
}

func (r *GroupRepository) GroupsCount(ctx context.Context) (uint64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var row model.AssessorGroup
	if err := db.Order("group_id desc").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, errs.Wrap(err, "query latest group")
	}
	return row.GroupID, nil
}

func (r *GroupRepository) AddSeats(ctx context.Context, groupID uint64, seatIDs []string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := r.requireGroup(db, groupID); err != nil {
		return err
	}

	for _, seatID := range seatIDs {
		row := model.AssessorSeat{GroupID: groupID, SeatID: seatID}
		// Seats already present are skipped, keeping membership unique.
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "seat_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "insert seat %q", seatID)
		}
	}
	return nil
}

func (r *GroupRepository) RemoveSeat(ctx context.Context, groupID uint64, seatID string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	// Removing a non-member is a no-op, tolerating retried governance calls.
	if err := db.Where("group_id = ? AND seat_id = ?", groupID, seatID).
		Delete(&model.AssessorSeat{}).Error; err != nil {
		return errs.Wrap(err, "delete seat")
	}
	return nil
}

func (r *GroupRepository) IsSeat(ctx context.Context, groupID uint64, seatID string) (bool, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.AssessorSeat{}).
		Where("group_id = ? AND seat_id = ?", groupID, seatID).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "query seat membership")
	}
	return count > 0, nil
}

func (r *GroupRepository) ListSeats(ctx context.Context, groupID uint64) ([]string, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.AssessorSeat
	if err := db.Where("group_id = ?", groupID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query seats")
	}

	seats := make([]string, 0, len(rows))
	for _, row := range rows {
		seats = append(seats, row.SeatID)
	}
	return seats, nil
}

func (r *GroupRepository) SetProductTypeGroup(ctx context.Context, productTypeIDs []uint32, groupID uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := r.requireGroup(db, groupID); err != nil {
		return err
	}

	for _, productTypeID := range productTypeIDs {
		row := model.ProductTypeGroup{ProductTypeID: productTypeID, GroupID: groupID}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_type_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"group_id"}),
		}).Create(&row).Error; err != nil {
			return errs.Wrapf(err, "map product type %d", productTypeID)
		}
	}
	return nil
}

func (r *GroupRepository) GroupForProductType(ctx context.Context, productTypeID uint32) (uint64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var row model.ProductTypeGroup
	if err := db.First(&row, "product_type_id = ?", productTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ports.ErrGroupNotFound
		}
		return 0, errs.Wrap(err, "query product type group")
	}
	return row.GroupID, nil
}

func (r *GroupRepository) requireGroup(db *gorm.DB, groupID uint64) error {
	var count int64
	if err := db.Model(&model.AssessorGroup{}).
		Where("group_id = ?", groupID).
		Count(&count).Error; err != nil {
		return errs.Wrap(err, "query group")
	}
	if count == 0 {
		return ports.ErrGroupNotFound
	}
	return nil
}
