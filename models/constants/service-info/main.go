package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "VarSearch Variant Query Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the VarSearch variant query API!"
	SERVICE_DESCRIPTION ServiceInfo = "Variant search query-translation service over per-project and per-family annotated variant indices."
	SERVICE_CONTACT     ServiceInfo = "mailto:support@varsearch.org"

	SERVICE_ARTIFACT    ServiceInfo = "varsearch"
	SERVICE_VERSION     ServiceInfo = "0.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.varsearch:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
