package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"satex_server/models"
	"satex_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// tableDef describes a table's key schema and its GSI key attributes.
type tableDef struct {
	pk      string
	sk      string
	indexes map[string]string // index name -> partition key attribute
}

// FakeDynamo is an in-memory DynamoDB standing in for the real client in
// tests. It implements the condition and update expression subset the
// portal's services emit; anything outside that subset fails loudly so a
// new expression shape gets a test-side extension instead of silently
// passing.
type FakeDynamo struct {
	mu     sync.Mutex
	tables map[string]tableDef
	items  map[string]map[string]map[string]types.AttributeValue // table -> composite key -> item
}

// NewFakeDynamo returns a fake pre-seeded with the portal's table
// schemas.
func NewFakeDynamo() *FakeDynamo {
	return &FakeDynamo{
		tables: map[string]tableDef{
			models.UsersTable: {pk: "userId", indexes: map[string]string{
				models.UsernameLowerIndex: "usernameLower",
				models.EmailIndex:         "emailId",
			}},
			models.MessagesTable:       {pk: "channelId", sk: "messageId"},
			models.ChatThreadsTable:    {pk: "ownerId", sk: "channelId"},
			models.FriendsTable:        {pk: "ownerId", sk: "friendId"},
			models.FriendRequestsTable: {pk: "ownerId", sk: "fromId"},
			models.FollowingTable:      {pk: "ownerId", sk: "peerId"},
			models.FollowersTable:      {pk: "ownerId", sk: "peerId"},
			models.FeedTable:           {pk: "feed", sk: "postId"},
			models.PostLikesTable:      {pk: "postId", sk: "userId"},
		},
		items: map[string]map[string]map[string]types.AttributeValue{},
	}
}

// Count reports how many items a table holds.
func (f *FakeDynamo) Count(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[table])
}

func (f *FakeDynamo) def(table string) (tableDef, error) {
	def, ok := f.tables[table]
	if !ok {
		return tableDef{}, fmt.Errorf("fake dynamo: unknown table %q", table)
	}
	return def, nil
}

func (f *FakeDynamo) keyString(def tableDef, item map[string]types.AttributeValue) string {
	key := utils.ExtractString(item, def.pk)
	if def.sk != "" {
		key += "|" + utils.ExtractString(item, def.sk)
	}
	return key
}

func copyAV(av types.AttributeValue) types.AttributeValue {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return &types.AttributeValueMemberS{Value: v.Value}
	case *types.AttributeValueMemberN:
		return &types.AttributeValueMemberN{Value: v.Value}
	case *types.AttributeValueMemberBOOL:
		return &types.AttributeValueMemberBOOL{Value: v.Value}
	case *types.AttributeValueMemberSS:
		return &types.AttributeValueMemberSS{Value: append([]string(nil), v.Value...)}
	case *types.AttributeValueMemberL:
		out := make([]types.AttributeValue, len(v.Value))
		for i, el := range v.Value {
			out[i] = copyAV(el)
		}
		return &types.AttributeValueMemberL{Value: out}
	case *types.AttributeValueMemberM:
		return &types.AttributeValueMemberM{Value: copyItem(v.Value)}
	case *types.AttributeValueMemberNULL:
		return &types.AttributeValueMemberNULL{Value: v.Value}
	default:
		return av
	}
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = copyAV(v)
	}
	return out
}

func copyTable(t map[string]map[string]types.AttributeValue) map[string]map[string]types.AttributeValue {
	out := make(map[string]map[string]types.AttributeValue, len(t))
	for k, v := range t {
		out[k] = copyItem(v)
	}
	return out
}

// resolveName maps #placeholders through ExpressionAttributeNames.
func resolveName(name string, names map[string]string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if strings.HasPrefix(part, "#") {
			if real, ok := names[part]; ok {
				parts[i] = real
			}
		}
	}
	return strings.Join(parts, ".")
}

// lookupPath reads a possibly nested attribute (a.b) from an item.
func lookupPath(item map[string]types.AttributeValue, path string) (types.AttributeValue, bool) {
	parts := strings.Split(path, ".")
	current := item
	for i, part := range parts {
		av, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return av, true
		}
		m, ok := av.(*types.AttributeValueMemberM)
		if !ok {
			return nil, false
		}
		current = m.Value
	}
	return nil, false
}

func numValue(av types.AttributeValue) (float64, bool) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(n.Value, 64)
	return parsed, err == nil
}

// splitClauses splits on top-level commas, leaving function arguments
// like if_not_exists(a, :b) intact.
func splitClauses(s string) []string {
	var clauses []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				clauses = append(clauses, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	clauses = append(clauses, strings.TrimSpace(s[start:]))
	return clauses
}

// evalCondition evaluates the condition subset: attribute_exists,
// attribute_not_exists, and "attr >= :v". item is nil when the document
// does not exist.
func evalCondition(cond string, item map[string]types.AttributeValue, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	cond = strings.TrimSpace(cond)
	switch {
	case strings.HasPrefix(cond, "attribute_exists("):
		path := resolveName(strings.TrimSuffix(strings.TrimPrefix(cond, "attribute_exists("), ")"), names)
		if item == nil {
			return false, nil
		}
		_, ok := lookupPath(item, path)
		return ok, nil
	case strings.HasPrefix(cond, "attribute_not_exists("):
		path := resolveName(strings.TrimSuffix(strings.TrimPrefix(cond, "attribute_not_exists("), ")"), names)
		if item == nil {
			return true, nil
		}
		_, ok := lookupPath(item, path)
		return !ok, nil
	case strings.Contains(cond, ">="):
		parts := strings.SplitN(cond, ">=", 2)
		path := resolveName(strings.TrimSpace(parts[0]), names)
		ref := strings.TrimSpace(parts[1])
		if item == nil {
			return false, nil
		}
		av, ok := lookupPath(item, path)
		if !ok {
			return false, nil
		}
		left, okL := numValue(av)
		right, okR := numValue(values[ref])
		if !okL || !okR {
			return false, fmt.Errorf("fake dynamo: non-numeric >= comparison in %q", cond)
		}
		return left >= right, nil
	default:
		return false, fmt.Errorf("fake dynamo: unsupported condition %q", cond)
	}
}

// applyUpdate applies the SET/ADD/DELETE subset to item in place.
func applyUpdate(item map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	expr = strings.TrimSpace(expr)
	switch {
	case strings.HasPrefix(expr, "SET "):
		for _, clause := range splitClauses(strings.TrimPrefix(expr, "SET ")) {
			parts := strings.SplitN(clause, "=", 2)
			if len(parts) != 2 {
				return fmt.Errorf("fake dynamo: malformed SET clause %q", clause)
			}
			path := resolveName(strings.TrimSpace(parts[0]), names)
			if err := applySetValue(item, path, strings.TrimSpace(parts[1]), values); err != nil {
				return err
			}
		}
	case strings.HasPrefix(expr, "ADD "):
		for _, clause := range splitClauses(strings.TrimPrefix(expr, "ADD ")) {
			fields := strings.Fields(clause)
			if len(fields) != 2 {
				return fmt.Errorf("fake dynamo: malformed ADD clause %q", clause)
			}
			path := resolveName(fields[0], names)
			if err := applyAdd(item, path, values[fields[1]]); err != nil {
				return err
			}
		}
	case strings.HasPrefix(expr, "DELETE "):
		for _, clause := range splitClauses(strings.TrimPrefix(expr, "DELETE ")) {
			fields := strings.Fields(clause)
			if len(fields) != 2 {
				return fmt.Errorf("fake dynamo: malformed DELETE clause %q", clause)
			}
			path := resolveName(fields[0], names)
			if err := applySetDelete(item, path, values[fields[1]]); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("fake dynamo: unsupported update expression %q", expr)
	}
	return nil
}

// applySetValue handles "attr = :v" and "attr = if_not_exists(attr, :zero) + :one".
func applySetValue(item map[string]types.AttributeValue, path, rhs string, values map[string]types.AttributeValue) error {
	if strings.HasPrefix(rhs, "if_not_exists(") {
		// if_not_exists(x, :default) + :delta
		inner := rhs[len("if_not_exists("):]
		closing := strings.Index(inner, ")")
		if closing < 0 {
			return fmt.Errorf("fake dynamo: malformed if_not_exists in %q", rhs)
		}
		args := strings.SplitN(inner[:closing], ",", 2)
		defaultRef := strings.TrimSpace(args[1])

		base := 0.0
		if existing, ok := lookupPath(item, path); ok {
			if n, okN := numValue(existing); okN {
				base = n
			}
		} else if n, okN := numValue(values[defaultRef]); okN {
			base = n
		}

		rest := strings.TrimSpace(inner[closing+1:])
		if strings.HasPrefix(rest, "+") {
			delta, ok := numValue(values[strings.TrimSpace(strings.TrimPrefix(rest, "+"))])
			if !ok {
				return fmt.Errorf("fake dynamo: bad increment in %q", rhs)
			}
			base += delta
		}
		item[path] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(base, 'f', -1, 64)}
		return nil
	}

	if !strings.HasPrefix(rhs, ":") {
		return fmt.Errorf("fake dynamo: unsupported SET value %q", rhs)
	}
	val, ok := values[rhs]
	if !ok {
		return fmt.Errorf("fake dynamo: missing expression value %q", rhs)
	}
	item[path] = copyAV(val)
	return nil
}

func applyAdd(item map[string]types.AttributeValue, path string, val types.AttributeValue) error {
	switch v := val.(type) {
	case *types.AttributeValueMemberN:
		delta, _ := numValue(v)
		base := 0.0
		if existing, ok := lookupPath(item, path); ok {
			if n, okN := numValue(existing); okN {
				base = n
			}
		}
		item[path] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(base+delta, 'f', -1, 64)}
		return nil
	case *types.AttributeValueMemberSS:
		set := map[string]bool{}
		if existing, ok := item[path].(*types.AttributeValueMemberSS); ok {
			for _, member := range existing.Value {
				set[member] = true
			}
		}
		for _, member := range v.Value {
			set[member] = true
		}
		merged := make([]string, 0, len(set))
		for member := range set {
			merged = append(merged, member)
		}
		sort.Strings(merged)
		item[path] = &types.AttributeValueMemberSS{Value: merged}
		return nil
	default:
		return fmt.Errorf("fake dynamo: ADD only supports numbers and string sets")
	}
}

func applySetDelete(item map[string]types.AttributeValue, path string, val types.AttributeValue) error {
	toRemove, ok := val.(*types.AttributeValueMemberSS)
	if !ok {
		return fmt.Errorf("fake dynamo: DELETE only supports string sets")
	}
	existing, ok := item[path].(*types.AttributeValueMemberSS)
	if !ok {
		return nil
	}
	remove := map[string]bool{}
	for _, member := range toRemove.Value {
		remove[member] = true
	}
	var kept []string
	for _, member := range existing.Value {
		if !remove[member] {
			kept = append(kept, member)
		}
	}
	if len(kept) == 0 {
		delete(item, path)
		return nil
	}
	item[path] = &types.AttributeValueMemberSS{Value: kept}
	return nil
}

// matchesFilter evaluates the Scan filter subset: begins_with and
// (possibly nested) equality.
func matchesFilter(item map[string]types.AttributeValue, filter string, names map[string]string, values map[string]types.AttributeValue) (bool, error) {
	filter = strings.TrimSpace(filter)
	if strings.HasPrefix(filter, "begins_with(") {
		inner := strings.TrimSuffix(strings.TrimPrefix(filter, "begins_with("), ")")
		args := strings.SplitN(inner, ",", 2)
		path := resolveName(strings.TrimSpace(args[0]), names)
		ref := strings.TrimSpace(args[1])
		av, ok := lookupPath(item, path)
		if !ok {
			return false, nil
		}
		s, okS := av.(*types.AttributeValueMemberS)
		prefix, okP := values[ref].(*types.AttributeValueMemberS)
		if !okS || !okP {
			return false, nil
		}
		return strings.HasPrefix(s.Value, prefix.Value), nil
	}
	if strings.Contains(filter, "=") {
		parts := strings.SplitN(filter, "=", 2)
		path := resolveName(strings.TrimSpace(parts[0]), names)
		ref := strings.TrimSpace(parts[1])
		av, ok := lookupPath(item, path)
		if !ok {
			return false, nil
		}
		s, okS := av.(*types.AttributeValueMemberS)
		want, okW := values[ref].(*types.AttributeValueMemberS)
		if !okS || !okW {
			return false, nil
		}
		return s.Value == want.Value, nil
	}
	return false, fmt.Errorf("fake dynamo: unsupported filter %q", filter)
}

// parseEqualityKey reads a "attr = :v" key condition.
func parseEqualityKey(cond string, names map[string]string, values map[string]types.AttributeValue) (string, string, error) {
	parts := strings.SplitN(cond, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("fake dynamo: unsupported key condition %q", cond)
	}
	attr := resolveName(strings.TrimSpace(parts[0]), names)
	ref := strings.TrimSpace(parts[1])
	val, ok := values[ref].(*types.AttributeValueMemberS)
	if !ok {
		return "", "", fmt.Errorf("fake dynamo: missing key value %q", ref)
	}
	return attr, val.Value, nil
}

func conditionalCheckFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

// --- DynamoAPI implementation ---

func (f *FakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	def, err := f.def(*params.TableName)
	if err != nil {
		return nil, err
	}
	item := f.items[*params.TableName][f.keyString(def, params.Key)]
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *FakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	def, err := f.def(*params.TableName)
	if err != nil {
		return nil, err
	}
	key := f.keyString(def, params.Item)
	existing := f.items[*params.TableName][key]

	if params.ConditionExpression != nil {
		ok, err := evalCondition(*params.ConditionExpression, existing, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, conditionalCheckFailed()
		}
	}

	if f.items[*params.TableName] == nil {
		f.items[*params.TableName] = map[string]map[string]types.AttributeValue{}
	}
	f.items[*params.TableName][key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *FakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	def, err := f.def(*params.TableName)
	if err != nil {
		return nil, err
	}
	key := f.keyString(def, params.Key)
	existing := f.items[*params.TableName][key]

	if params.ConditionExpression != nil {
		ok, err := evalCondition(*params.ConditionExpression, existing, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, conditionalCheckFailed()
		}
	}

	// An update against a missing document creates it from the key.
	item := copyItem(existing)
	if item == nil {
		item = copyItem(params.Key)
	}
	if err := applyUpdate(item, aws.ToString(params.UpdateExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
		return nil, err
	}

	if f.items[*params.TableName] == nil {
		f.items[*params.TableName] = map[string]map[string]types.AttributeValue{}
	}
	f.items[*params.TableName][key] = item
	return &dynamodb.UpdateItemOutput{Attributes: copyItem(item)}, nil
}

func (f *FakeDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	def, err := f.def(*params.TableName)
	if err != nil {
		return nil, err
	}
	key := f.keyString(def, params.Key)
	existing := f.items[*params.TableName][key]

	if params.ConditionExpression != nil {
		ok, err := evalCondition(*params.ConditionExpression, existing, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, conditionalCheckFailed()
		}
	}

	delete(f.items[*params.TableName], key)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *FakeDynamo) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	def, err := f.def(*params.TableName)
	if err != nil {
		return nil, err
	}
	attr, want, err := parseEqualityKey(aws.ToString(params.KeyConditionExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	if params.IndexName != nil {
		indexKey, ok := def.indexes[*params.IndexName]
		if !ok {
			return nil, fmt.Errorf("fake dynamo: unknown index %q", *params.IndexName)
		}
		if attr != indexKey {
			return nil, fmt.Errorf("fake dynamo: key condition %q does not match index %q", attr, *params.IndexName)
		}
	} else if attr != def.pk {
		return nil, fmt.Errorf("fake dynamo: key condition %q does not match partition key %q", attr, def.pk)
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items[*params.TableName] {
		if utils.ExtractString(item, attr) == want {
			matched = append(matched, copyItem(item))
		}
	}

	if def.sk != "" {
		sort.Slice(matched, func(i, j int) bool {
			return utils.ExtractString(matched[i], def.sk) < utils.ExtractString(matched[j], def.sk)
		})
		if params.ScanIndexForward != nil && !*params.ScanIndexForward {
			for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	if params.Limit != nil && int(*params.Limit) < len(matched) {
		matched = matched[:int(*params.Limit)]
	}
	return &dynamodb.QueryOutput{Items: matched}, nil
}

func (f *FakeDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.def(*params.TableName); err != nil {
		return nil, err
	}

	var matched []map[string]types.AttributeValue
	for _, item := range f.items[*params.TableName] {
		if params.FilterExpression != nil {
			ok, err := matchesFilter(item, *params.FilterExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, copyItem(item))
		if params.Limit != nil && len(matched) >= int(*params.Limit) {
			break
		}
	}
	return &dynamodb.ScanOutput{Items: matched}, nil
}

// TransactWriteItems applies every write atomically against a staged
// copy; any failed condition cancels the whole batch with per-item
// cancellation reasons, the way the real service reports them.
func (f *FakeDynamo) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	staged := make(map[string]map[string]map[string]types.AttributeValue, len(f.items))
	for table, rows := range f.items {
		staged[table] = copyTable(rows)
	}

	reasons := make([]types.CancellationReason, len(params.TransactItems))
	for i := range reasons {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
	}

	for i, twi := range params.TransactItems {
		failed, err := f.applyTransactItem(staged, twi)
		if err != nil {
			return nil, err
		}
		if failed {
			reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
			return nil, &types.TransactionCanceledException{
				Message:             aws.String("Transaction cancelled"),
				CancellationReasons: reasons,
			}
		}
	}

	f.items = staged
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

// applyTransactItem mutates staged; returns failed=true on a condition
// miss.
func (f *FakeDynamo) applyTransactItem(staged map[string]map[string]map[string]types.AttributeValue, twi types.TransactWriteItem) (bool, error) {
	switch {
	case twi.Put != nil:
		def, err := f.def(*twi.Put.TableName)
		if err != nil {
			return false, err
		}
		key := f.keyString(def, twi.Put.Item)
		existing := staged[*twi.Put.TableName][key]
		if twi.Put.ConditionExpression != nil {
			ok, err := evalCondition(*twi.Put.ConditionExpression, existing, twi.Put.ExpressionAttributeNames, twi.Put.ExpressionAttributeValues)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		if staged[*twi.Put.TableName] == nil {
			staged[*twi.Put.TableName] = map[string]map[string]types.AttributeValue{}
		}
		staged[*twi.Put.TableName][key] = copyItem(twi.Put.Item)
		return false, nil

	case twi.Update != nil:
		def, err := f.def(*twi.Update.TableName)
		if err != nil {
			return false, err
		}
		key := f.keyString(def, twi.Update.Key)
		existing := staged[*twi.Update.TableName][key]
		if twi.Update.ConditionExpression != nil {
			ok, err := evalCondition(*twi.Update.ConditionExpression, existing, twi.Update.ExpressionAttributeNames, twi.Update.ExpressionAttributeValues)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		item := copyItem(existing)
		if item == nil {
			item = copyItem(twi.Update.Key)
		}
		if err := applyUpdate(item, aws.ToString(twi.Update.UpdateExpression), twi.Update.ExpressionAttributeNames, twi.Update.ExpressionAttributeValues); err != nil {
			return false, err
		}
		if staged[*twi.Update.TableName] == nil {
			staged[*twi.Update.TableName] = map[string]map[string]types.AttributeValue{}
		}
		staged[*twi.Update.TableName][key] = item
		return false, nil

	case twi.Delete != nil:
		def, err := f.def(*twi.Delete.TableName)
		if err != nil {
			return false, err
		}
		key := f.keyString(def, twi.Delete.Key)
		existing := staged[*twi.Delete.TableName][key]
		if twi.Delete.ConditionExpression != nil {
			ok, err := evalCondition(*twi.Delete.ConditionExpression, existing, twi.Delete.ExpressionAttributeNames, twi.Delete.ExpressionAttributeValues)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		delete(staged[*twi.Delete.TableName], key)
		return false, nil

	default:
		return false, fmt.Errorf("fake dynamo: unsupported transact item")
	}
}
