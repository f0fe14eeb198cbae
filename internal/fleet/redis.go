package fleet

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/drt-dispatch/internal/models"
)

// RedisFleet is a Provider backed by Redis GEO plus a metadata hash per
// vehicle. Positions land here from the telemetry consumer; the server only
// reads and commits assignments.
type RedisFleet struct {
	client *redis.Client
	geoKey string
}

func NewRedisFleet(addr, password, geoKey string) *RedisFleet {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisFleet{client: c, geoKey: geoKey}
}

func MetaKey(id string) string { return "vehicle:meta:" + id }

func (r *RedisFleet) Snapshot(ctx context.Context) ([]models.Vehicle, error) {
	ids, err := r.client.ZRange(ctx, r.geoKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, 0, len(ids))
	for _, id := range ids {
		pos, err := r.client.GeoPos(ctx, r.geoKey, id).Result()
		if err != nil || len(pos) == 0 || pos[0] == nil {
			continue
		}
		v := models.Vehicle{ID: id, Location: models.Coord{Lat: pos[0].Latitude, Lng: pos[0].Longitude}}
		meta, err := r.client.HGetAll(ctx, MetaKey(id)).Result()
		if err != nil {
			return nil, err
		}
		applyMeta(&v, meta)
		out = append(out, v)
	}
	return out, nil
}

func (r *RedisFleet) Commit(ctx context.Context, vehicleID string, passengers int) error {
	key := MetaKey(vehicleID)
	// WATCH-based optimistic check so two dispatchers cannot both take the
	// last seats.
	txn := func(tx *redis.Tx) error {
		meta, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(meta) == 0 {
			return ErrUnknownVehicle
		}
		var v models.Vehicle
		applyMeta(&v, meta)
		if v.Status != models.StatusAvailable || v.RemainingCapacity() < passengers {
			return ErrAssignmentConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, map[string]interface{}{
				"status":  string(models.StatusBusy),
				"pax":     v.CurrentPassengers + passengers,
				"updated": time.Now().Format(time.RFC3339),
			})
			return nil
		})
		return err
	}
	err := r.client.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		return ErrAssignmentConflict
	}
	return err
}

func (r *RedisFleet) Release(ctx context.Context, vehicleID string, passengers int) error {
	key := MetaKey(vehicleID)
	txn := func(tx *redis.Tx) error {
		meta, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(meta) == 0 {
			return ErrUnknownVehicle
		}
		var v models.Vehicle
		applyMeta(&v, meta)
		pax := v.CurrentPassengers - passengers
		if pax < 0 {
			pax = 0
		}
		status := string(models.StatusBusy)
		if pax == 0 {
			status = string(models.StatusAvailable)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, map[string]interface{}{
				"status":  status,
				"pax":     pax,
				"updated": time.Now().Format(time.RFC3339),
			})
			return nil
		})
		return err
	}
	err := r.client.Watch(ctx, txn, key)
	if err == redis.TxFailedErr {
		return ErrAssignmentConflict
	}
	return err
}

func (r *RedisFleet) Upsert(ctx context.Context, v models.Vehicle) error {
	if _, err := r.client.GeoAdd(ctx, r.geoKey, &redis.GeoLocation{
		Longitude: v.Location.Lng,
		Latitude:  v.Location.Lat,
		Name:      v.ID,
	}).Result(); err != nil {
		return err
	}
	return r.client.HSet(ctx, MetaKey(v.ID), MetaFields(v)).Err()
}

// MetaFields flattens a vehicle into the hash stored next to its GEO entry.
// Shared with the telemetry consumer so both writers agree on field names.
func MetaFields(v models.Vehicle) map[string]interface{} {
	m := map[string]interface{}{
		"type":     v.Type,
		"class":    string(v.Class),
		"status":   string(v.Status),
		"capacity": v.Capacity,
		"pax":      v.CurrentPassengers,
		"ev":       strconv.FormatBool(v.IsEV),
		"rating":   strconv.FormatFloat(v.Rating, 'f', 2, 64),
		"heading":  strconv.FormatFloat(v.Heading, 'f', 1, 64),
		"speed":    strconv.FormatFloat(v.Speed, 'f', 1, 64),
		"updated":  time.Now().Format(time.RFC3339),
	}
	if v.BatteryLevel != nil {
		m["battery"] = strconv.FormatFloat(*v.BatteryLevel, 'f', 1, 64)
	}
	if v.LocationName != "" {
		m["location_name"] = v.LocationName
	}
	if v.DriverName != "" {
		m["driver_name"] = v.DriverName
	}
	return m
}

func applyMeta(v *models.Vehicle, meta map[string]string) {
	v.Type = meta["type"]
	v.Class = models.VehicleClass(meta["class"])
	v.Status = models.VehicleStatus(meta["status"])
	v.LocationName = meta["location_name"]
	v.DriverName = meta["driver_name"]
	if n, err := strconv.Atoi(meta["capacity"]); err == nil {
		v.Capacity = n
	}
	if n, err := strconv.Atoi(meta["pax"]); err == nil {
		v.CurrentPassengers = n
	}
	v.IsEV = meta["ev"] == "true"
	if f, err := strconv.ParseFloat(meta["rating"], 64); err == nil {
		v.Rating = f
	}
	if f, err := strconv.ParseFloat(meta["heading"], 64); err == nil {
		v.Heading = f
	}
	if f, err := strconv.ParseFloat(meta["speed"], 64); err == nil {
		v.Speed = f
	}
	if raw, ok := meta["battery"]; ok {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			v.BatteryLevel = &f
		}
	}
	if ts, err := time.Parse(time.RFC3339, meta["updated"]); err == nil {
		v.LastUpdated = ts
	}
}
