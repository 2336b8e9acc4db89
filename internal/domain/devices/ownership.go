package devices

import "context"

// OwnerOf expone el ownerID de un dispositivo.
// Se usa para evitar ciclos de imports entre módulos (devices <-> careteam).
func (s *Service) OwnerOf(ctx context.Context, deviceID string) (string, error) {
	d, err := s.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return d.OwnerID, nil
}
