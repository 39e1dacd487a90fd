package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ CredentialsAPI    = (*CredentialsService)(nil)
	_ ProviderLister    = (*ProviderService)(nil)
	_ credentialsGetter = (*CredentialsService)(nil)
	_ RequestAuthorizer = BearerTokenAuthorizer{}
	_ RequestAuthorizer = TokenSourceAuthorizer{}
	_ MetricsRecorder   = NopMetricsRecorder{}
	_ ConfigProvider    = (*CfgxConfigProvider)(nil)
	_ OptionsResolver   = GoOptionsResolver{}
	_ RawConfigLoader   = StaticRawConfigLoader{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
