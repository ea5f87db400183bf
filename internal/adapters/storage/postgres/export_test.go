package postgres

import "context"

// Truncate empties the todos table between tests.
func Truncate(ctx context.Context, s *Store) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE todos`)
	return err
}
