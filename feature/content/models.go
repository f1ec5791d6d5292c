package content

import "strconv"

// TableName of the destination entity table.
const TableName = "content_entities"

// Entity is one imported record at the destination.
type Entity struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	UUID      string `gorm:"column:uuid;type:varchar(64);uniqueIndex;not null"`
	Type      string `gorm:"column:type;type:varchar(64);index;not null"`
	OwnerUUID string `gorm:"column:owner_uuid;type:varchar(64)"`
	Changed   *int64 `gorm:"column:changed"`
	Revision  int    `gorm:"column:revision;not null;default:1"`
	Payload   string `gorm:"column:payload;type:text"`
}

// TableName overrides the table name used by Entity.
func (Entity) TableName() string { return TableName }

// LastModified reports the stored modification time.
func (e *Entity) LastModified() (int64, bool) {
	if e.Changed == nil {
		return 0, false
	}
	return *e.Changed, true
}

// InternalKey is the destination primary key.
func (e *Entity) InternalKey() string {
	return strconv.FormatUint(e.ID, 10)
}

// requiredColumns are the columns Apply writes.
var requiredColumns = []string{"id", "uuid", "type", "owner_uuid", "changed", "revision", "payload"}
