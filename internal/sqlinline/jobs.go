package sqlinline

const QInsertVideoJob = `--sql 6aef6f91-6742-42e3-aa95-ff826fff66ee
insert into video_jobs (id, organization_id, requester_id, status, request_json)
values ($1::uuid, $2::uuid, $3::uuid, $4::text, $5::jsonb);
`

const QSelectVideoJob = `--sql 828c0bc3-ca8f-448d-a40d-0b283be3c268
select id, organization_id, requester_id, status, request_json, result_json, operation_name, created_at, updated_at
from video_jobs
where id = $1::uuid;
`

const QAttachVideoJobOperation = `--sql a15710ca-9df3-44d1-b79c-5d7fce13e00c
update video_jobs
set operation_name = $2::text, updated_at = now()
where id = $1::uuid;
`

// Terminal transitions are guarded by the current status so that exactly one
// of the poller and the compensation engine wins; the loser sees zero rows.
const QCompleteVideoJob = `--sql 4142d7c9-b888-4f4a-9aaa-1f8e90a27e5e
update video_jobs
set status = 'COMPLETED', result_json = $2::jsonb, updated_at = now()
where id = $1::uuid and status = 'PROCESSING';
`

const QFailVideoJob = `--sql 75d65b8a-2056-481a-b65b-70139fbc0ca1
update video_jobs
set status = 'FAILED', result_json = $2::jsonb, updated_at = now()
where id = $1::uuid and status = 'PROCESSING';
`
