package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lostfound-api/internal/core/cache"
	"lostfound-api/internal/domain"
)

const itemListKey = "items:list"

// ListCache is the subset of core/cache.Cache the item service needs.
type ListCache interface {
	cache.Loader
	Invalidate(ctx context.Context, keys ...string) error
}

type CreateItemInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Phone       *string `json:"phone" validate:"omitempty,max=255"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
	Destination *string `json:"destination" validate:"omitempty,max=255"`
	Time        *string `json:"time" validate:"omitempty,max=255"`
	Date        *string `json:"date" validate:"omitempty,date"`
	PostType    *string `json:"post_type" validate:"omitempty,max=64"`
}

// ItemPatch 只更新请求体里出现的字段；null 表示清空
type ItemPatch struct {
	Title       domain.Optional[string] `json:"title"`
	Description domain.Optional[string] `json:"description"`
	Phone       domain.Optional[string] `json:"phone"`
	Address     domain.Optional[string] `json:"address"`
	Destination domain.Optional[string] `json:"destination"`
	Time        domain.Optional[string] `json:"time"`
	Date        domain.Optional[string] `json:"date"`
	IsTaken     domain.Optional[bool]   `json:"is_taken"`
	PostType    domain.Optional[string] `json:"post_type"`
}

type ItemService struct {
	items   domain.ItemRepository
	cache   ListCache
	listTTL time.Duration
	log     *zap.Logger
}

// NewItemService c 可以为 nil，此时不缓存列表
func NewItemService(items domain.ItemRepository, c ListCache, listTTL time.Duration, l *zap.Logger) *ItemService {
	if l == nil {
		l = zap.NewNop()
	}
	return &ItemService{items: items, cache: c, listTTL: listTTL, log: l}
}

func (s *ItemService) List(ctx context.Context) ([]domain.ItemView, error) {
	if s.cache == nil {
		return s.loadList(ctx)
	}
	out, err := cache.GetOrLoadJSON(s.cache, ctx, itemListKey, s.listTTL,
		func(ctx context.Context) (*[]domain.ItemView, error) {
			v, err := s.loadList(ctx)
			return &v, err
		})
	if err != nil {
		return nil, asDomain("list items", err)
	}
	if out == nil {
		return []domain.ItemView{}, nil
	}
	return *out, nil
}

func (s *ItemService) loadList(ctx context.Context) ([]domain.ItemView, error) {
	rows, err := s.items.List(ctx)
	if err != nil {
		return nil, domain.Internal("list items", err)
	}
	views := make([]domain.ItemView, 0, len(rows))
	for i := range rows {
		views = append(views, domain.NewItemView(&rows[i]))
	}
	return views, nil
}

func (s *ItemService) Create(ctx context.Context, p domain.Principal, in CreateItemInput) (*domain.ItemView, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	for _, f := range []**string{&in.Description, &in.Phone, &in.Address, &in.Destination, &in.Time, &in.Date, &in.PostType} {
		*f = nullable(*f)
	}
	fe := fieldErrors{}
	if err := fe.checkStruct(in); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	date, err := parseOptionalDate(in.Date)
	if err != nil {
		return nil, domain.Invalid("date", "The date field must be a valid date.")
	}
	it := &domain.Item{
		Title:       in.Title,
		Description: in.Description,
		Phone:       in.Phone,
		Address:     in.Address,
		Destination: in.Destination,
		Time:        in.Time,
		Date:        date,
		PostType:    in.PostType,
		UserID:      p.UserID,
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, domain.Internal("create item", err)
	}
	s.invalidate(ctx)
	itemsCreated.Inc()
	v := domain.NewItemView(it)
	return &v, nil
}

func (s *ItemService) Show(ctx context.Context, id uint) (*domain.ItemView, error) {
	it, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	v := domain.NewItemView(it)
	if v.PostType == nil {
		pt := domain.DefaultPostType
		v.PostType = &pt
	}
	return &v, nil
}

// Update 顺序：不存在 404 → 非本人 403 → 字段校验 400
func (s *ItemService) Update(ctx context.Context, p domain.Principal, id uint, patch ItemPatch) (*domain.ItemView, error) {
	if err := p.Require(); err != nil {
		return nil, err
	}
	it, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Owns(it.UserID) {
		return nil, domain.Forbidden("You are not allowed to update this item")
	}
	fields, err := patch.columns()
	if err != nil {
		return nil, err
	}
	if taken, ok := fields["is_taken"].(bool); ok && !taken {
		if it.IsTaken {
			return nil, domain.Conflict("A taken item cannot be released")
		}
		// 未领取时 false 是空操作；写回会覆盖并发 Take 的结果
		delete(fields, "is_taken")
	}
	if len(fields) > 0 {
		if err := s.items.Update(ctx, id, p.UserID, fields); err != nil {
			return nil, domain.Internal("update item", err)
		}
		s.invalidate(ctx)
	}
	it, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	v := domain.NewItemView(it)
	return &v, nil
}

func (p ItemPatch) columns() (map[string]any, error) {
	fe := fieldErrors{}
	fields := map[string]any{}

	if p.Title.Set {
		if !p.Title.Valid {
			fe.add("title", "The title field is required.")
		} else if err := fe.checkVar("title", p.Title.Value, "required,max=255"); err != nil {
			return nil, err
		} else {
			fields["title"] = p.Title.Value
		}
	}
	strs := []struct {
		col string
		v   domain.Optional[string]
		tag string
	}{
		{"description", p.Description, ""},
		{"phone", p.Phone, "max=255"},
		{"address", p.Address, "max=255"},
		{"destination", p.Destination, "max=255"},
		{"time", p.Time, "max=255"},
		{"post_type", p.PostType, "max=64"},
	}
	for _, f := range strs {
		if !f.v.Set {
			continue
		}
		val := nullable(f.v.Ptr())
		if val != nil && f.tag != "" {
			if err := fe.checkVar(f.col, *val, f.tag); err != nil {
				return nil, err
			}
		}
		fields[f.col] = val
	}
	if p.Date.Set {
		d, err := parseOptionalDate(nullable(p.Date.Ptr()))
		if err != nil {
			fe.add("date", "The date field must be a valid date.")
		} else {
			fields["date"] = d
		}
	}
	if p.IsTaken.Set {
		if !p.IsTaken.Valid {
			fe.add("is_taken", "The is taken field must be true or false.")
		} else {
			fields["is_taken"] = p.IsTaken.Value
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// Take 用条件更新保证 false→true 只发生一次
func (s *ItemService) Take(ctx context.Context, id uint) (string, error) {
	ok, err := s.items.MarkTaken(ctx, id)
	if err != nil {
		return "", domain.Internal("take item", err)
	}
	if !ok {
		if _, err := s.find(ctx, id); err != nil {
			return "", err
		}
		itemTakes.WithLabelValues("conflict").Inc()
		return "", domain.Conflict("Already taken")
	}
	s.invalidate(ctx)
	itemTakes.WithLabelValues("taken").Inc()
	s.log.Info("item taken", zap.Uint("item", id))
	return "Item is now taken", nil
}

func (s *ItemService) Destroy(ctx context.Context, p domain.Principal, id uint) (string, error) {
	if err := p.Require(); err != nil {
		return "", err
	}
	it, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}
	if !p.Owns(it.UserID) {
		return "", domain.Forbidden("You are not allowed to delete this item")
	}
	ok, err := s.items.Delete(ctx, id, p.UserID)
	if err != nil {
		return "", domain.Internal("delete item", err)
	}
	if !ok {
		return "", domain.NotFound("Item not found")
	}
	s.invalidate(ctx)
	return "Item deleted successfully", nil
}

func (s *ItemService) find(ctx context.Context, id uint) (*domain.Item, error) {
	it, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("lookup item", err)
	}
	if it == nil {
		return nil, domain.NotFound("Item not found")
	}
	return it, nil
}

func (s *ItemService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, itemListKey); err != nil {
		s.log.Warn("invalidate item list", zap.Error(err))
	}
}
