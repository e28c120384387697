package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dom/webdesk-core/internal/domain"
)

type roomRepository struct {
	rdb *goredis.Client
}

func NewRoomRepository(rdb *goredis.Client) *roomRepository {
	return &roomRepository{rdb: rdb}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, roomKey(room.ID), data, 0).Err()
}

func (r *roomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	data, err := r.rdb.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading room: %w", err)
	}

	var room domain.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decoding room: %w", err)
	}
	return &room, nil
}

func (r *roomRepository) Update(ctx context.Context, room *domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, roomKey(room.ID), data, goredis.KeepTTL).Err()
}

func (r *roomRepository) ListAll(ctx context.Context) ([]*domain.Room, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, roomKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning rooms: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading rooms: %w", err)
	}

	rooms := make([]*domain.Room, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // deleted between scan and read
		}
		var room domain.Room
		if err := json.Unmarshal([]byte(s), &room); err != nil {
			continue
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}
