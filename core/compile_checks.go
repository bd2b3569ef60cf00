package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Authorizer      = (*Service)(nil)
	_ MainQueue       = (*SerialQueue)(nil)
	_ PreferenceStore = (*MemoryPreferenceStore)(nil)
	_ AccountStore    = UnavailableAccountStore{}
	_ MetricsRecorder = NopMetricsRecorder{}

	_ LoginErrorBuilder = defaultLoginErrorBuilder{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
