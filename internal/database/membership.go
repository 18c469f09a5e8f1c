package database

import (
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/wordstudy/internal/entities"
)

// RecountWords recomputes study_groups.words_count from the membership rows
// of the given groups. Must run in the transaction that changed membership.
func RecountWords(tx *gorm.DB, groupIDs ...uint) error {
	if len(groupIDs) == 0 {
		return nil
	}
	return tx.Model(&entities.Group{}).
		Where("id IN ?", groupIDs).
		UpdateColumn("words_count", gorm.Expr(
			"(SELECT COUNT(*) FROM study_group_words WHERE study_group_words.group_id = study_groups.id)",
		)).Error
}

// Lock order for membership writers is word rows first, then group rows.
// Word deletion holds FOR UPDATE on the word; group writers hold FOR KEY SHARE
// on every word they add. The two conflict, so a membership insert can never
// slip in between a word's group lookup and its delete.

// LockWord loads the word with id into dest under an exclusive row lock.
func LockWord(tx *gorm.DB, id uint, dest *entities.Word) error {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).First(dest, id).Error
}

// LockWords takes shared key locks on the given words and returns the ids
// that have no row.
func LockWords(tx *gorm.DB, ids []uint) ([]uint, error) {
	return MissingIDs(tx.Clauses(clause.Locking{Strength: "KEY SHARE"}), &entities.Word{}, ids)
}

// LockGroups takes row locks on the given groups so concurrent membership
// changes recount against committed data. SQLite ignores the clause; its
// write transactions are already serialized.
func LockGroups(tx *gorm.DB, groupIDs ...uint) ([]entities.Group, error) {
	var groups []entities.Group
	if len(groupIDs) == 0 {
		return groups, nil
	}
	err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id IN ?", groupIDs).
		Order("id").
		Find(&groups).Error
	return groups, err
}

// AddMemberships inserts (word, group) rows, ignoring pairs that already exist.
func AddMemberships(tx *gorm.DB, groupID uint, wordIDs []uint) error {
	if len(wordIDs) == 0 {
		return nil
	}
	rows := make([]entities.Membership, 0, len(wordIDs))
	for _, id := range wordIDs {
		rows = append(rows, entities.Membership{WordID: id, GroupID: groupID})
	}
	return tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// MissingIDs returns the ids from ids that have no row in model's table.
func MissingIDs(tx *gorm.DB, model any, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := tx.Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Exists reports whether model's table has a row with the given id.
func Exists(tx *gorm.DB, model any, id uint) (bool, error) {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UniqueIDs drops duplicates, returning the rest in ascending order.
func UniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
