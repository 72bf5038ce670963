package terminal

import "slices"

func addNotice(s State, n Notice) State {
	notices := append(slices.Clone(s.Notices), n)
	if len(notices) > maxNotices {
		notices = notices[len(notices)-maxNotices:]
	}
	s.Notices = notices
	return s
}

func removeNotice(s State, id string) (State, bool) {
	i := slices.IndexFunc(s.Notices, func(n Notice) bool { return n.ID == id })
	if i < 0 {
		return s, false
	}
	s.Notices = slices.Delete(slices.Clone(s.Notices), i, i+1)
	return s, true
}
