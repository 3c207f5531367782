package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"AwardSync/internal/model"
)

type fakeSource struct {
	records []*model.SourceRecord
	err     error
	calls   int
	// 非 nil 时 Fetch 先通知 entered 再阻塞到 release 关闭
	entered chan struct{}
	release chan struct{}
}

func (f *fakeSource) GetName() string { return "airtable" }

func (f *fakeSource) FetchSourceRecords(ctx context.Context) ([]*model.SourceRecord, error) {
	f.calls++
	if f.entered != nil {
		close(f.entered)
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type targetCall struct {
	Op     string
	ItemID string
	Fields *model.AwardFields
	IDs    []string
}

type fakeTarget struct {
	mu        sync.Mutex
	items     []*model.TargetItem
	fetchErr  error
	createErr map[string]error // airtableid → err
	updateErr map[string]error // item id → err
	deleteErr map[string]error // item id → err
	publishFn func(ids []string) (*model.PublishResult, error)
	onDelete  func(itemID string) // 删除成功后回调
	calls     []targetCall
	nextID    int
	now       time.Time
}

func newFakeTarget(items ...*model.TargetItem) *fakeTarget {
	return &fakeTarget{items: items, now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeTarget) GetName() string { return "webflow" }

func (f *fakeTarget) FetchTargetItems(ctx context.Context) ([]*model.TargetItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]*model.TargetItem, 0, len(f.items))
	for _, it := range f.items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeTarget) CreateTargetItem(ctx context.Context, fields *model.AwardFields) (*model.TargetItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, targetCall{Op: "create", Fields: fields})
	if err := f.createErr[fields.AirtableID]; err != nil {
		return nil, err
	}
	f.nextID++
	f.now = f.now.Add(time.Second)
	updated := f.now
	item := &model.TargetItem{ID: fmt.Sprintf("new-%d", f.nextID), LastUpdated: &updated}
	applyFields(item, fields)
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeTarget) UpdateTargetItem(ctx context.Context, itemID string, fields *model.AwardFields) (*model.TargetItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, targetCall{Op: "update", ItemID: itemID, Fields: fields})
	if err := f.updateErr[itemID]; err != nil {
		return nil, err
	}
	for _, it := range f.items {
		if it.ID == itemID {
			f.now = f.now.Add(time.Second)
			updated := f.now
			it.LastUpdated = &updated
			applyFields(it, fields)
			return it, nil
		}
	}
	return nil, errors.New("item not found")
}

func (f *fakeTarget) DeleteTargetItem(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, targetCall{Op: "delete", ItemID: itemID})
	if err := f.deleteErr[itemID]; err != nil {
		return err
	}
	for i, it := range f.items {
		if it.ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			if f.onDelete != nil {
				f.onDelete(itemID)
			}
			return nil
		}
	}
	return errors.New("item not found")
}

func (f *fakeTarget) PublishTargetItems(ctx context.Context, itemIDs []string) (*model.PublishResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, targetCall{Op: "publish", IDs: append([]string(nil), itemIDs...)})
	if f.publishFn != nil {
		return f.publishFn(itemIDs)
	}
	return &model.PublishResult{PublishedItemIDs: itemIDs}, nil
}

func (f *fakeTarget) callsOf(op string) []targetCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []targetCall
	for _, c := range f.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTarget) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func applyFields(item *model.TargetItem, fields *model.AwardFields) {
	item.FieldData = model.TargetFieldData{
		Name:             fields.Name,
		Year:             fields.Year,
		Slug:             fields.Slug,
		AwardWinnerImage: model.ImageRef{URL: fields.AwardWinnerImage},
		AirtableID:       fields.AirtableID,
	}
}

type fakeContent struct {
	mu    sync.Mutex
	data  map[string][]byte
	errs  map[string]error
	calls map[string]int
}

func newFakeContent(data map[string]string) *fakeContent {
	f := &fakeContent{data: map[string][]byte{}, errs: map[string]error{}, calls: map[string]int{}}
	for k, v := range data {
		f.data[k] = []byte(v)
	}
	return f
}

func (f *fakeContent) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	b, ok := f.data[url]
	if !ok {
		return nil, fmt.Errorf("404 %s", url)
	}
	return b, nil
}

func (f *fakeContent) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeRunRepo struct {
	mu         sync.Mutex
	created    []*model.SyncRun
	finished   []model.SyncRun
	duplicates []*model.DuplicateLink
}

func (f *fakeRunRepo) CreateRun(ctx context.Context, run *model.SyncRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, run)
	return nil
}

// FinishRun 与真实数据库一样，ctx 已取消时写入失败
func (f *fakeRunRepo) FinishRun(ctx context.Context, run *model.SyncRun) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, *run)
	return nil
}

func (f *fakeRunRepo) ListRuns(ctx context.Context, kind string, limit int) ([]*model.SyncRun, error) {
	return f.created, nil
}

func (f *fakeRunRepo) UpsertDuplicates(ctx context.Context, links []*model.DuplicateLink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duplicates = append(f.duplicates, links...)
	return nil
}

func (f *fakeRunRepo) ListDuplicates(ctx context.Context, includeResolved bool) ([]*model.DuplicateLink, error) {
	return f.duplicates, nil
}

func targetItem(id, airtableID, name, year, image string) *model.TargetItem {
	return &model.TargetItem{
		ID: id,
		FieldData: model.TargetFieldData{
			Name:             name,
			Year:             model.TextValue(year),
			Slug:             BuildSlug(name),
			AwardWinnerImage: model.ImageRef{URL: image},
			AirtableID:       airtableID,
		},
	}
}

func sourceRecord(id, name, year, image string) *model.SourceRecord {
	return &model.SourceRecord{ID: id, Name: name, Year: model.NumberValue(year), ImageURL: image}
}
