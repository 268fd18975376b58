package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-xray-sdk-go/xray"

	"agency-rbac/internal/domain"
)

type PermissionRepository struct{ client *Client }

type RoleRepository struct{ client *Client }

type UserRepository struct{ client *Client }

type OverrideRepository struct{ client *Client }

type AuditRepository struct {
	client     *Client
	collection string
}

func NewPermissionRepository(client *Client) *PermissionRepository {
	return &PermissionRepository{client: client}
}

func NewRoleRepository(client *Client) *RoleRepository {
	return &RoleRepository{client: client}
}

func NewUserRepository(client *Client) *UserRepository {
	return &UserRepository{client: client}
}

func NewOverrideRepository(client *Client) *OverrideRepository {
	return &OverrideRepository{client: client}
}

func NewAuditRepository(client *Client, collection string) *AuditRepository {
	return &AuditRepository{client: client, collection: collection}
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Upsert overwrites name, description and position; CreatedAt is kept from
// the first write.
func (r *PermissionRepository) Upsert(ctx context.Context, permission domain.Permission) error {
	return xray.Capture(ctx, "DynamoDB.UpsertPermission", func(ctx context.Context) error {
		_, err := r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName:        r.client.table(),
			Key:              key(catalogPK(), permSK(permission.ID)),
			UpdateExpression: aws.String("SET EntityType = :t, #i = :id, #n = :n, #d = :d, #p = :p, CreatedAt = if_not_exists(CreatedAt, :c)"),
			ExpressionAttributeNames: map[string]string{
				"#i": "ID",
				"#n": "Name",
				"#d": "Description",
				"#p": "Position",
			},
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":t":  &awsv2types.AttributeValueMemberS{Value: "PERMISSION"},
				":id": &awsv2types.AttributeValueMemberS{Value: permission.ID},
				":n":  &awsv2types.AttributeValueMemberS{Value: permission.Name},
				":d":  &awsv2types.AttributeValueMemberS{Value: permission.Description},
				":p":  &awsv2types.AttributeValueMemberN{Value: strconv.Itoa(permission.Position)},
				":c":  &awsv2types.AttributeValueMemberS{Value: formatTime(permission.CreatedAt)},
			},
		})
		return err
	})
}

type permissionItem struct {
	ID          string `dynamodbav:"ID"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description"`
	Position    int    `dynamodbav:"Position"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

func (r *PermissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	var items []map[string]awsv2types.AttributeValue
	err := xray.Capture(ctx, "DynamoDB.QueryPermissions", func(ctx context.Context) error {
		var e error
		items, e = r.client.queryAll(ctx, &awsv2dynamodb.QueryInput{
			TableName:              r.client.table(),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: catalogPK()},
				":sk": &awsv2types.AttributeValueMemberS{Value: "PERM#"},
			},
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	permissions := make([]domain.Permission, 0, len(items))
	for _, item := range items {
		var raw permissionItem
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		permissions = append(permissions, domain.Permission{
			ID:          raw.ID,
			Name:        raw.Name,
			Description: raw.Description,
			Position:    raw.Position,
			CreatedAt:   parseTime(raw.CreatedAt),
		})
	}
	return permissions, nil
}

type roleItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	EntityType  string   `dynamodbav:"EntityType"`
	ID          string   `dynamodbav:"ID"`
	Name        string   `dynamodbav:"Name"`
	Permissions []string `dynamodbav:"Permissions,stringset,omitempty"`
	Position    int      `dynamodbav:"Position"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

func (i roleItem) toDomain() domain.Role {
	return domain.Role{
		ID:          i.ID,
		Name:        i.Name,
		Permissions: i.Permissions,
		Position:    i.Position,
		CreatedAt:   parseTime(i.CreatedAt),
		UpdatedAt:   parseTime(i.UpdatedAt),
	}
}

func (r *RoleRepository) CreateIfMissing(ctx context.Context, role domain.Role) (bool, error) {
	av, err := attributevalue.MarshalMap(roleItem{
		PK:          registryPK(),
		SK:          roleSK(role.ID),
		EntityType:  "ROLE",
		ID:          role.ID,
		Name:        role.Name,
		Permissions: role.Permissions,
		Position:    role.Position,
		CreatedAt:   formatTime(role.CreatedAt),
		UpdatedAt:   formatTime(role.UpdatedAt),
	})
	if err != nil {
		return false, err
	}
	err = xray.Capture(ctx, "DynamoDB.PutRole", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName:           r.client.table(),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
		return err
	})
	if isConditionalCheckFailure(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RoleRepository) GetByID(ctx context.Context, roleID string) (domain.Role, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetRole", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName:      r.client.table(),
			Key:            key(registryPK(), roleSK(roleID)),
			ConsistentRead: aws.Bool(true),
		})
		return e
	})
	if err != nil {
		return domain.Role{}, err
	}
	if out.Item == nil {
		return domain.Role{}, domain.ErrNotFound
	}
	var raw roleItem
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.Role{}, err
	}
	return raw.toDomain(), nil
}

func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	var items []map[string]awsv2types.AttributeValue
	err := xray.Capture(ctx, "DynamoDB.QueryRoles", func(ctx context.Context) error {
		var e error
		items, e = r.client.queryAll(ctx, &awsv2dynamodb.QueryInput{
			TableName:              r.client.table(),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: registryPK()},
				":sk": &awsv2types.AttributeValueMemberS{Value: "ROLE#"},
			},
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(items))
	for _, item := range items {
		var raw roleItem
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		roles = append(roles, raw.toDomain())
	}
	return roles, nil
}

// SetPermission adds or deletes one element of the role's permission string
// set, so concurrent edits of different permissions on one role do not
// overwrite each other.
func (r *RoleRepository) SetPermission(ctx context.Context, roleID, permissionID string, granted bool, at time.Time) error {
	op := "ADD"
	if !granted {
		op = "DELETE"
	}
	return xray.Capture(ctx, "DynamoDB.UpdateRolePermissions", func(ctx context.Context) error {
		_, err := r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName:        r.client.table(),
			Key:              key(registryPK(), roleSK(roleID)),
			UpdateExpression: aws.String(op + " Permissions :p SET UpdatedAt = :u"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":p": &awsv2types.AttributeValueMemberSS{Value: []string{permissionID}},
				":u": &awsv2types.AttributeValueMemberS{Value: formatTime(at)},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

type securityItem struct {
	ForceLogout          bool   `dynamodbav:"ForceLogout"`
	RequirePasswordReset bool   `dynamodbav:"RequirePasswordReset"`
	Enable2FA            bool   `dynamodbav:"Enable2FA"`
	AccessExpiration     string `dynamodbav:"AccessExpiration"`
	Status               string `dynamodbav:"Status"`
}

func securityToItem(c domain.SecurityControls) securityItem {
	item := securityItem{
		ForceLogout:          c.ForceLogout,
		RequirePasswordReset: c.RequirePasswordReset,
		Enable2FA:            c.Enable2FA,
		Status:               string(c.Status),
	}
	if c.AccessExpiration != nil {
		item.AccessExpiration = formatTime(*c.AccessExpiration)
	}
	return item
}

func (i securityItem) toDomain() domain.SecurityControls {
	c := domain.SecurityControls{
		ForceLogout:          i.ForceLogout,
		RequirePasswordReset: i.RequirePasswordReset,
		Enable2FA:            i.Enable2FA,
		Status:               domain.AccountStatus(i.Status),
	}
	if i.AccessExpiration != "" {
		exp := parseTime(i.AccessExpiration)
		c.AccessExpiration = &exp
	}
	if c.Status == "" {
		c.Status = domain.AccountStatusActive
	}
	return c
}

type userItem struct {
	PK         string       `dynamodbav:"PK"`
	SK         string       `dynamodbav:"SK"`
	EntityType string       `dynamodbav:"EntityType"`
	ID         string       `dynamodbav:"ID"`
	Email      string       `dynamodbav:"Email"`
	RoleID     string       `dynamodbav:"RoleID"`
	Security   securityItem `dynamodbav:"Security"`
	CreatedAt  string       `dynamodbav:"CreatedAt"`
	UpdatedAt  string       `dynamodbav:"UpdatedAt"`
}

func (r *UserRepository) Put(ctx context.Context, user domain.User) error {
	av, err := attributevalue.MarshalMap(userItem{
		PK:         userPK(user.ID),
		SK:         userMetaSK(),
		EntityType: "USER",
		ID:         user.ID,
		Email:      user.Email,
		RoleID:     user.RoleID,
		Security:   securityToItem(user.Security),
		CreatedAt:  formatTime(user.CreatedAt),
		UpdatedAt:  formatTime(user.UpdatedAt),
	})
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutUser", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: r.client.table(),
			Item:      av,
		})
		return err
	})
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (domain.User, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetUser", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName:      r.client.table(),
			Key:            key(userPK(userID), userMetaSK()),
			ConsistentRead: aws.Bool(true),
		})
		return e
	})
	if err != nil {
		return domain.User{}, err
	}
	if out.Item == nil {
		return domain.User{}, domain.ErrNotFound
	}
	var raw userItem
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:        raw.ID,
		Email:     raw.Email,
		RoleID:    raw.RoleID,
		Security:  raw.Security.toDomain(),
		CreatedAt: parseTime(raw.CreatedAt),
		UpdatedAt: parseTime(raw.UpdatedAt),
	}, nil
}

func (r *UserRepository) SetRole(ctx context.Context, userID, roleID string, at time.Time) (string, error) {
	var out *awsv2dynamodb.UpdateItemOutput
	err := xray.Capture(ctx, "DynamoDB.UpdateUserRole", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName:        r.client.table(),
			Key:              key(userPK(userID), userMetaSK()),
			UpdateExpression: aws.String("SET RoleID = :r, UpdatedAt = :u"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":r": &awsv2types.AttributeValueMemberS{Value: roleID},
				":u": &awsv2types.AttributeValueMemberS{Value: formatTime(at)},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
			ReturnValues:        awsv2types.ReturnValueUpdatedOld,
		})
		if isConditionalCheckFailure(e) {
			return domain.ErrNotFound
		}
		return e
	})
	if err != nil {
		return "", err
	}
	var old struct {
		RoleID string `dynamodbav:"RoleID"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &old); err != nil {
		return "", err
	}
	return old.RoleID, nil
}

// SetSecurity replaces the embedded controls map as a whole.
func (r *UserRepository) SetSecurity(ctx context.Context, userID string, controls domain.SecurityControls, at time.Time) error {
	securityAV, err := attributevalue.Marshal(securityToItem(controls))
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.UpdateUserSecurity", func(ctx context.Context) error {
		_, err := r.client.db.UpdateItem(ctx, &awsv2dynamodb.UpdateItemInput{
			TableName:        r.client.table(),
			Key:              key(userPK(userID), userMetaSK()),
			UpdateExpression: aws.String("SET #s = :s, UpdatedAt = :u"),
			ExpressionAttributeNames: map[string]string{
				"#s": "Security",
			},
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":s": securityAV,
				":u": &awsv2types.AttributeValueMemberS{Value: formatTime(at)},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

type overrideItem struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	EntityType   string `dynamodbav:"EntityType"`
	ID           string `dynamodbav:"ID"`
	UserID       string `dynamodbav:"UserID"`
	PermissionID string `dynamodbav:"PermissionID"`
	GrantedAt    string `dynamodbav:"GrantedAt"`
	GrantedBy    string `dynamodbav:"GrantedBy"`
}

func (i overrideItem) toDomain() domain.UserOverride {
	return domain.UserOverride{
		UserID:       i.UserID,
		PermissionID: i.PermissionID,
		GrantedAt:    parseTime(i.GrantedAt),
		GrantedBy:    i.GrantedBy,
	}
}

func (r *OverrideRepository) Get(ctx context.Context, userID, permissionID string) (domain.UserOverride, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetUserPermission", func(ctx context.Context) error {
		var e error
		out, e = r.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName:      r.client.table(),
			Key:            key(userPK(userID), overrideSK(permissionID)),
			ConsistentRead: aws.Bool(true),
		})
		return e
	})
	if err != nil {
		return domain.UserOverride{}, err
	}
	if out.Item == nil {
		return domain.UserOverride{}, domain.ErrNotFound
	}
	var raw overrideItem
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.UserOverride{}, err
	}
	return raw.toDomain(), nil
}

func (r *OverrideRepository) Put(ctx context.Context, override domain.UserOverride) error {
	av, err := attributevalue.MarshalMap(overrideItem{
		PK:           userPK(override.UserID),
		SK:           overrideSK(override.PermissionID),
		EntityType:   "USER_PERMISSION",
		ID:           domain.OverrideKey(override.UserID, override.PermissionID),
		UserID:       override.UserID,
		PermissionID: override.PermissionID,
		GrantedAt:    formatTime(override.GrantedAt),
		GrantedBy:    override.GrantedBy,
	})
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutUserPermission", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: r.client.table(),
			Item:      av,
		})
		return err
	})
}

func (r *OverrideRepository) Delete(ctx context.Context, userID, permissionID string) error {
	return xray.Capture(ctx, "DynamoDB.DeleteUserPermission", func(ctx context.Context) error {
		_, err := r.client.db.DeleteItem(ctx, &awsv2dynamodb.DeleteItemInput{
			TableName:           r.client.table(),
			Key:                 key(userPK(userID), overrideSK(permissionID)),
			ConditionExpression: aws.String("attribute_exists(PK)"),
		})
		if isConditionalCheckFailure(err) {
			return domain.ErrNotFound
		}
		return err
	})
}

func (r *OverrideRepository) ListByUser(ctx context.Context, userID string) ([]domain.UserOverride, error) {
	var items []map[string]awsv2types.AttributeValue
	err := xray.Capture(ctx, "DynamoDB.QueryUserPermissions", func(ctx context.Context) error {
		var e error
		items, e = r.client.queryAll(ctx, &awsv2dynamodb.QueryInput{
			TableName:              r.client.table(),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":pk": &awsv2types.AttributeValueMemberS{Value: userPK(userID)},
				":sk": &awsv2types.AttributeValueMemberS{Value: "PERM#"},
			},
			ConsistentRead: aws.Bool(true),
		})
		return e
	})
	if err != nil {
		return nil, err
	}
	overrides := make([]domain.UserOverride, 0, len(items))
	for _, item := range items {
		var raw overrideItem
		if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
			return nil, err
		}
		overrides = append(overrides, raw.toDomain())
	}
	return overrides, nil
}

type auditItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"EntityType"`
	ID             string `dynamodbav:"ID"`
	SubjectType    string `dynamodbav:"SubjectType"`
	SubjectID      string `dynamodbav:"SubjectID"`
	PermissionID   string `dynamodbav:"PermissionID,omitempty"`
	Action         string `dynamodbav:"Action"`
	ChangedBy      string `dynamodbav:"ChangedBy"`
	ChangedByEmail string `dynamodbav:"ChangedByEmail"`
	IPAddress      string `dynamodbav:"IPAddress"`
	UserAgent      string `dynamodbav:"UserAgent"`
	Timestamp      string `dynamodbav:"Timestamp"`
	Details        string `dynamodbav:"Details"`
	OldValue       string `dynamodbav:"OldValue,omitempty"`
	NewValue       string `dynamodbav:"NewValue,omitempty"`
}

func (i auditItem) toDomain() domain.AuditLogEntry {
	return domain.AuditLogEntry{
		ID:             i.ID,
		SubjectType:    domain.SubjectType(i.SubjectType),
		SubjectID:      i.SubjectID,
		PermissionID:   i.PermissionID,
		Action:         domain.AuditAction(i.Action),
		ChangedBy:      i.ChangedBy,
		ChangedByEmail: i.ChangedByEmail,
		IPAddress:      i.IPAddress,
		UserAgent:      i.UserAgent,
		Timestamp:      parseTime(i.Timestamp),
		Details:        i.Details,
		OldValue:       i.OldValue,
		NewValue:       i.NewValue,
	}
}

// Append never overwrites: an entry id that already exists is rejected.
func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditLogEntry) error {
	if entry.ID == "" {
		return domain.ErrInvalidInput
	}
	av, err := attributevalue.MarshalMap(auditItem{
		PK:             logPK(r.collection),
		SK:             logEntrySK(entry.ID),
		EntityType:     "AUDIT_ENTRY",
		ID:             entry.ID,
		SubjectType:    string(entry.SubjectType),
		SubjectID:      entry.SubjectID,
		PermissionID:   entry.PermissionID,
		Action:         string(entry.Action),
		ChangedBy:      entry.ChangedBy,
		ChangedByEmail: entry.ChangedByEmail,
		IPAddress:      entry.IPAddress,
		UserAgent:      entry.UserAgent,
		Timestamp:      formatTime(entry.Timestamp),
		Details:        entry.Details,
		OldValue:       entry.OldValue,
		NewValue:       entry.NewValue,
	})
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.AppendAuditEntry", func(ctx context.Context) error {
		_, err := r.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName:           r.client.table(),
			Item:                av,
			ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
		})
		if isConditionalCheckFailure(err) {
			return errors.New("audit entry " + entry.ID + " already exists")
		}
		return err
	})
}

// List pages newest first until filter.Limit matching entries are collected.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLogEntry, error) {
	input := &awsv2dynamodb.QueryInput{
		TableName:              r.client.table(),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
			":pk": &awsv2types.AttributeValueMemberS{Value: logPK(r.collection)},
			":sk": &awsv2types.AttributeValueMemberS{Value: "ENTRY#"},
		},
		ScanIndexForward: aws.Bool(false),
	}
	var conditions []string
	if filter.SubjectID != "" {
		conditions = append(conditions, "SubjectID = :subject")
		input.ExpressionAttributeValues[":subject"] = &awsv2types.AttributeValueMemberS{Value: filter.SubjectID}
	}
	if filter.Action != "" {
		conditions = append(conditions, "#a = :action")
		input.ExpressionAttributeNames = map[string]string{"#a": "Action"}
		input.ExpressionAttributeValues[":action"] = &awsv2types.AttributeValueMemberS{Value: string(filter.Action)}
	}
	if len(conditions) > 0 {
		input.FilterExpression = aws.String(strings.Join(conditions, " AND "))
	}

	var entries []domain.AuditLogEntry
	err := xray.Capture(ctx, "DynamoDB.QueryAuditEntries", func(ctx context.Context) error {
		p := awsv2dynamodb.NewQueryPaginator(r.client.db, input)
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, item := range page.Items {
				var raw auditItem
				if err := attributevalue.UnmarshalMap(item, &raw); err != nil {
					return err
				}
				entries = append(entries, raw.toDomain())
				if filter.Limit > 0 && len(entries) == filter.Limit {
					return nil
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
